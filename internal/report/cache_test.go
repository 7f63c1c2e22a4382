package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
)

func testSummary() analysis.Summary {
	return analysis.Summary{
		Period: analysis.Period{Start: "2025-01-01", End: "2025-03-31"},
		Expense: analysis.ExpenseBlock{
			Total:       2_751_000,
			DaysInRange: 90,
		},
		Params: analysis.DefaultParams(),
	}
}

func TestKeyStability(t *testing.T) {
	s := testSummary()
	p := analysis.DefaultParams()

	k1, err := Key(s, p, DefaultModelName)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := Key(s, p, DefaultModelName)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("identical inputs produced keys %s and %s", k1, k2)
	}
	if len(k1) != 32 {
		t.Errorf("key %q is not an md5 hex digest", k1)
	}
}

func TestKeyChangesWithInputs(t *testing.T) {
	s := testSummary()
	p := analysis.DefaultParams()
	base, err := Key(s, p, DefaultModelName)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("different model", func(t *testing.T) {
		k, err := Key(s, p, "gemini-2.5-pro")
		if err != nil {
			t.Fatal(err)
		}
		if k == base {
			t.Error("model change must change the key")
		}
	})

	t.Run("different params", func(t *testing.T) {
		p2 := p
		p2.SmallTxThreshold = 20_000
		k, err := Key(s, p2, DefaultModelName)
		if err != nil {
			t.Fatal(err)
		}
		if k == base {
			t.Error("params change must change the key")
		}
	})

	t.Run("different summary", func(t *testing.T) {
		s2 := s
		s2.Expense.Total = 1
		k, err := Key(s2, p, DefaultModelName)
		if err != nil {
			t.Fatal(err)
		}
		if k == base {
			t.Error("summary change must change the key")
		}
	})
}

func TestCacheSaveLoadRoundTrip(t *testing.T) {
	c := NewCache(t.TempDir())
	s := testSummary()
	rep := sampleReport()

	key, err := Key(s, s.Params, DefaultModelName)
	if err != nil {
		t.Fatal(err)
	}
	path, err := c.Save(ModeAll, key, rep, s)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "report_"+key+".json" {
		t.Errorf("unexpected cache filename %q", path)
	}

	entry, ok := c.Load(ModeAll, key)
	if !ok {
		t.Fatal("saved entry not found")
	}
	if entry.Key != key || entry.Mode != ModeAll {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.Result.ThreeLines) != 3 {
		t.Errorf("result round-trip lost three_lines: %+v", entry.Result)
	}

	if _, ok := c.Load(ModeShort, key); ok {
		t.Error("modes must not share cache entries")
	}
}

func TestCacheLoadMisses(t *testing.T) {
	c := NewCache(t.TempDir())

	if _, ok := c.Load(ModeAll, "0123456789abcdef0123456789abcdef"); ok {
		t.Error("missing key must be a miss")
	}

	// A corrupt file is a miss, never an error surfaced to the caller.
	dir := filepath.Join(c.dir, string(ModeAll))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "report_deadbeef.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Load(ModeAll, "deadbeef"); ok {
		t.Error("corrupt entry must be a miss")
	}
}

func TestCacheLoadLatest(t *testing.T) {
	c := NewCache(t.TempDir())
	s := testSummary()

	first := sampleReport()
	first.ThreeLines[0] = "first"
	if _, err := c.Save(ModeShort, "aaaa", first, s); err != nil {
		t.Fatal(err)
	}

	// Make sure the second write gets a later mtime.
	time.Sleep(20 * time.Millisecond)

	second := sampleReport()
	second.ThreeLines[0] = "second"
	if _, err := c.Save(ModeShort, "bbbb", second, s); err != nil {
		t.Fatal(err)
	}

	entry, ok := c.LoadLatest(ModeShort)
	if !ok {
		t.Fatal("expected a latest entry")
	}
	if entry.Result.ThreeLines[0] != "second" {
		t.Errorf("latest = %q, want the newer entry", entry.Result.ThreeLines[0])
	}

	if _, ok := c.LoadLatest(ModeAll); ok {
		t.Error("a mode with no entries must report none")
	}
}
