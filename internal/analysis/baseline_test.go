package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSelectBaselinePrefersPreviousWindow(t *testing.T) {
	end := day("2025-03-30")

	var history []core.Transaction
	// Current window: March 2025.
	for i := 1; i <= 10; i++ {
		history = append(history, tx(fmt.Sprintf("2025-03-%02d", i), -10_000, "식비"))
	}
	// Previous window has 15 distinct days, comfortably past the gate.
	for i := 1; i <= 15; i++ {
		history = append(history, tx(fmt.Sprintf("2025-02-%02d", i), -8_000, "식비"))
	}
	// Earlier full months would satisfy the fallback branches too; the
	// previous window must still win.
	for i := 1; i <= 20; i++ {
		history = append(history, tx(fmt.Sprintf("2024-12-%02d", i), -5_000, "식비"))
		history = append(history, tx(fmt.Sprintf("2024-11-%02d", i), -5_000, "식비"))
	}

	stc := SelectBaseline(history, end, 30, 3, 3)
	if !stc.Available {
		t.Fatal("expected an available comparison")
	}
	if stc.Baseline.Used != BaselinePreviousWindow {
		t.Fatalf("baseline used = %q, want %q", stc.Baseline.Used, BaselinePreviousWindow)
	}
	if stc.Baseline.Confidence != "High" {
		t.Errorf("confidence = %q, want High", stc.Baseline.Confidence)
	}
	if stc.Baseline.TotalForWindow != 15*8_000 {
		t.Errorf("baseline total = %v, want %v", stc.Baseline.TotalForWindow, 15*8_000)
	}
	if !stc.HasWeekSplit {
		t.Error("previous-window baseline must provide a weekday/weekend split")
	}
	if len(stc.CategoryDeltas) == 0 {
		t.Fatal("expected per-category deltas")
	}
	for _, cd := range stc.CategoryDeltas {
		if !cd.HasBaseline || !cd.BaselineReliable {
			t.Errorf("category %q: deltas must carry a reliable baseline in this branch", cd.Category)
		}
	}
}

func TestSelectBaselineFallsBackToRecentMonths(t *testing.T) {
	end := day("2025-03-30")

	var history []core.Transaction
	for i := 1; i <= 5; i++ {
		history = append(history, tx(fmt.Sprintf("2025-03-%02d", i), -12_000, "식비"))
	}
	// Nothing in the previous window; two full earlier months instead.
	// November: 300,000 over 20 days with data, December: 400,000 over 20.
	for i := 1; i <= 20; i++ {
		history = append(history, tx(fmt.Sprintf("2024-11-%02d", i), -15_000, "식비"))
		history = append(history, tx(fmt.Sprintf("2024-12-%02d", i), -20_000, "식비"))
	}

	stc := SelectBaseline(history, end, 30, 3, 3)
	if !stc.Available {
		t.Fatal("expected an available comparison")
	}
	if stc.Baseline.Used != BaselineRecentMonths {
		t.Fatalf("baseline used = %q, want %q", stc.Baseline.Used, BaselineRecentMonths)
	}
	if stc.Baseline.Confidence != "Medium" {
		t.Errorf("confidence = %q, want Medium", stc.Baseline.Confidence)
	}
	// Daily averages 15,000 and 20,000; median 17,500 scaled to 30 days.
	if want := 17_500.0 * 30; stc.Baseline.TotalForWindow != want {
		t.Errorf("baseline total = %v, want %v", stc.Baseline.TotalForWindow, want)
	}
	if stc.HasWeekSplit {
		t.Error("daily-median baseline cannot offer a weekday/weekend split")
	}
	for _, cd := range stc.CategoryDeltas {
		if cd.HasBaseline {
			t.Errorf("category %q: baseline side must be marked unavailable", cd.Category)
		}
	}
}

func TestSelectBaselineOverallMedian(t *testing.T) {
	end := day("2025-03-30")

	var history []core.Transaction
	// One full earlier month is not enough for the monthly branch, but its
	// 20 days push the all-time day count past the overall-median gate.
	for i := 1; i <= 20; i++ {
		history = append(history, tx(fmt.Sprintf("2024-12-%02d", i), -10_000, "식비"))
	}
	for i := 1; i <= 3; i++ {
		history = append(history, tx(fmt.Sprintf("2025-03-%02d", i), -10_000, "식비"))
	}

	stc := SelectBaseline(history, end, 30, 3, 3)
	if !stc.Available {
		t.Fatal("expected an available comparison")
	}
	if stc.Baseline.Used != BaselineOverallMedian {
		t.Fatalf("baseline used = %q, want %q", stc.Baseline.Used, BaselineOverallMedian)
	}
	if stc.Baseline.Confidence != "Low" {
		t.Errorf("confidence = %q, want Low", stc.Baseline.Confidence)
	}
	if stc.Baseline.Meta.DaysUsed != 23 {
		t.Errorf("days used = %d, want 23", stc.Baseline.Meta.DaysUsed)
	}
}

func TestSelectBaselineUnavailableWhenDataTooThin(t *testing.T) {
	end := day("2025-03-30")

	var history []core.Transaction
	for i := 1; i <= 5; i++ {
		history = append(history, tx(fmt.Sprintf("2025-03-%02d", i), -10_000, "식비"))
	}

	stc := SelectBaseline(history, end, 30, 3, 3)
	if stc.Available {
		t.Fatalf("5 days of history must not produce a baseline, got %q", stc.Baseline.Used)
	}
	if stc.Reason == "" {
		t.Error("unavailable result must carry a reason")
	}
}

func TestSelectBaselineEmptyHistory(t *testing.T) {
	stc := SelectBaseline(nil, day("2025-03-30"), 30, 3, 3)
	if stc.Available {
		t.Error("empty history must be unavailable")
	}
}

func TestSelectBaselinePartialMonthExcluded(t *testing.T) {
	// March is the month of the window end, so even dense March data must
	// never count toward the full-month branch.
	end := day("2025-03-15")

	var history []core.Transaction
	for i := 1; i <= 14; i++ {
		history = append(history, tx(fmt.Sprintf("2025-03-%02d", i), -10_000, "식비"))
	}

	stc := SelectBaseline(history, end, 30, 3, 3)
	if stc.Available && stc.Baseline.Used == BaselineRecentMonths {
		t.Error("the partial current month leaked into the full-month baseline")
	}
}
