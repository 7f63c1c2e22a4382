package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func storedTx(date string, hour int, hasHour bool, amount float64, kind core.Kind) core.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	return core.Transaction{
		Date:          d,
		Hour:          hour,
		HasHour:       hasHour,
		Amount:        amount,
		AmountAbs:     abs,
		Kind:          kind,
		Category:      "식비",
		Description:   "점심",
		PaymentMethod: "카카오페이",
	}
}

func TestReplaceAndListTransactions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rows := []core.Transaction{
		storedTx("2025-03-02", 12, true, -15_000, core.KindExpense),
		storedTx("2025-03-01", 0, false, -8_000, core.KindExpense),
		storedTx("2025-03-05", 9, true, 2_000_000, core.KindIncome),
	}
	if err := repo.ReplaceTransactions(ctx, rows); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}

	// Date order, not insertion order.
	if got[0].Date.Format("2006-01-02") != "2025-03-01" {
		t.Errorf("first row date = %v", got[0].Date)
	}

	// A missing hour must come back as missing, not as midnight.
	if got[0].HasHour {
		t.Error("row without an hour must not report one")
	}
	if !got[1].HasHour || got[1].Hour != 12 {
		t.Errorf("hour round-trip failed: %+v", got[1])
	}

	if got[2].Kind != core.KindIncome || got[2].Amount != 2_000_000 {
		t.Errorf("income row round-trip failed: %+v", got[2])
	}
	if got[0].Category != "식비" || got[0].PaymentMethod != "카카오페이" {
		t.Errorf("text fields round-trip failed: %+v", got[0])
	}
}

func TestReplaceTransactionsIsIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rows := []core.Transaction{
		storedTx("2025-03-01", 0, false, -8_000, core.KindExpense),
		storedTx("2025-03-02", 0, false, -9_000, core.KindExpense),
	}
	for i := 0; i < 3; i++ {
		if err := repo.ReplaceTransactions(ctx, rows); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.CountTransactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d after repeated imports, want 2", n)
	}
}

func TestListTransactionsInWindow(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rows := []core.Transaction{
		storedTx("2025-02-28", 0, false, -1_000, core.KindExpense),
		storedTx("2025-03-01", 0, false, -2_000, core.KindExpense),
		storedTx("2025-03-31", 0, false, -3_000, core.KindExpense),
		storedTx("2025-04-01", 0, false, -4_000, core.KindExpense),
	}
	if err := repo.ReplaceTransactions(ctx, rows); err != nil {
		t.Fatal(err)
	}

	w, err := core.NewWindow(day("2025-03-01"), day("2025-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := repo.ListTransactionsInWindow(ctx, w)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows in window, want 2 (bounds inclusive)", len(got))
	}
	if got[0].AmountAbs != 2_000 || got[1].AmountAbs != 3_000 {
		t.Errorf("window rows = %+v", got)
	}
}

func TestSaveAndLatestReport(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	first := SavedReport{
		Mode:        "all",
		CacheKey:    "aaaa",
		ResultJSON:  []byte(`{"three_lines":["1","2","3"]}`),
		SummaryJSON: []byte(`{}`),
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveReport(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.CacheKey = "bbbb"
	second.ResultJSON = []byte(`{"three_lines":["x","y","z"]}`)
	second.CreatedAt = time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	if err := repo.SaveReport(ctx, second); err != nil {
		t.Fatal(err)
	}

	latest, err := repo.LatestReport(ctx, "all")
	if err != nil {
		t.Fatal(err)
	}
	if latest.CacheKey != "bbbb" {
		t.Errorf("latest key = %q, want the newer report", latest.CacheKey)
	}
	if string(latest.ResultJSON) != string(second.ResultJSON) {
		t.Errorf("result JSON round-trip failed: %s", latest.ResultJSON)
	}

	if _, err := repo.LatestReport(ctx, "short"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("empty mode: err = %v, want sql.ErrNoRows", err)
	}
}

func TestSaveReportUpsertsSameKey(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	rep := SavedReport{
		Mode:        "short",
		CacheKey:    "cccc",
		ResultJSON:  []byte(`{"v":1}`),
		SummaryJSON: []byte(`{}`),
	}
	if err := repo.SaveReport(ctx, rep); err != nil {
		t.Fatal(err)
	}

	rep.ResultJSON = []byte(`{"v":2}`)
	if err := repo.SaveReport(ctx, rep); err != nil {
		t.Fatal(err)
	}

	latest, err := repo.LatestReport(ctx, "short")
	if err != nil {
		t.Fatal(err)
	}
	if string(latest.ResultJSON) != `{"v":2}` {
		t.Errorf("upsert kept stale result: %s", latest.ResultJSON)
	}
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
