package analysis

import (
	"testing"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

func tx(date string, amount float64, category string) core.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	return core.Transaction{
		Date:      d,
		Amount:    amount,
		AmountAbs: abs,
		Kind:      core.KindExpense,
		Category:  category,
	}
}

func txDesc(date string, amount float64, desc string) core.Transaction {
	t := tx(date, amount, "식비")
	t.Description = desc
	return t
}

func TestMonthlySeriesChronological(t *testing.T) {
	rows := []core.Transaction{
		tx("2025-03-10", -100, "a"),
		tx("2025-01-05", -50, "a"),
		tx("2025-03-20", -200, "a"),
		tx("2025-02-01", -75, "a"),
	}

	series := MonthlySeries(rows)
	want := []MonthTotal{
		{Month: "2025-01", Total: 50},
		{Month: "2025-02", Total: 75},
		{Month: "2025-03", Total: 300},
	}
	if len(series) != len(want) {
		t.Fatalf("series length = %d, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %+v, want %+v", i, series[i], want[i])
		}
	}
}

func TestTopCategoriesTieBreakFirstSeen(t *testing.T) {
	rows := []core.Transaction{
		tx("2025-03-01", -100, "카페"),
		tx("2025-03-02", -100, "교통"),
		tx("2025-03-03", -300, "식비"),
	}

	top := TopCategories(rows, 5)
	if len(top) != 3 {
		t.Fatalf("got %d categories, want 3", len(top))
	}
	if top[0].Category != "식비" {
		t.Errorf("top[0] = %q, want 식비", top[0].Category)
	}
	// 카페 and 교통 are tied at 100; 카페 was seen first.
	if top[1].Category != "카페" || top[2].Category != "교통" {
		t.Errorf("tie break broken: got %q then %q, want 카페 then 교통",
			top[1].Category, top[2].Category)
	}
}

func TestCalcMoM(t *testing.T) {
	t.Run("two months", func(t *testing.T) {
		mom := CalcMoM([]MonthTotal{
			{Month: "2025-02", Total: 100},
			{Month: "2025-03", Total: 150},
		})
		if !mom.Available {
			t.Fatal("expected available")
		}
		if !mom.HasRate || mom.ChangeRate != 0.5 {
			t.Errorf("change rate = (%v, %v), want (0.5, true)", mom.ChangeRate, mom.HasRate)
		}
	})

	t.Run("single month unavailable", func(t *testing.T) {
		mom := CalcMoM([]MonthTotal{{Month: "2025-03", Total: 100}})
		if mom.Available {
			t.Error("one month of data must not produce a synthesized change")
		}
	})

	t.Run("zero previous month has no rate", func(t *testing.T) {
		mom := CalcMoM([]MonthTotal{
			{Month: "2025-02", Total: 0},
			{Month: "2025-03", Total: 100},
		})
		if !mom.Available {
			t.Fatal("expected available")
		}
		if mom.HasRate {
			t.Error("rate over a zero base must be unavailable, not infinite")
		}
	})
}

func TestMaxTx(t *testing.T) {
	rows := []core.Transaction{
		txDesc("2025-03-01", -100, "a"),
		txDesc("2025-03-02", -900, "b"),
		txDesc("2025-03-03", -900, "c"), // tie: earlier row wins
	}
	m := MaxTx(rows)
	if !m.Available {
		t.Fatal("expected available")
	}
	if m.Description != "b" || m.Amount != 900 {
		t.Errorf("max tx = %q/%v, want b/900", m.Description, m.Amount)
	}

	if MaxTx(nil).Available {
		t.Error("empty input must be unavailable")
	}
}
