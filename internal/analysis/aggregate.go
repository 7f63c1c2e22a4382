package analysis

import (
	"sort"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

type (
	// MonthTotal is one entry of a chronological monthly expense series.
	MonthTotal struct {
		Month string  `json:"month"`
		Total float64 `json:"total"`
	}

	// CategoryAmount is an aggregated amount for one top-level category.
	CategoryAmount struct {
		Category string  `json:"category_lv1"`
		Amount   float64 `json:"amount"`
	}

	// MoMChange compares the two most recent months of a monthly series.
	// With fewer than two months it is reported unavailable, never a
	// synthesized zero change.
	MoMChange struct {
		Available     bool    `json:"available"`
		CurrentMonth  string  `json:"current_month,omitempty"`
		PrevMonth     string  `json:"prev_month,omitempty"`
		CurrentAmount float64 `json:"current_amount"`
		PrevAmount    float64 `json:"prev_amount"`
		ChangeRate    float64 `json:"change_rate"`
		HasRate       bool    `json:"has_rate"`
	}

	// MaxTransaction describes the largest single expense in a window.
	MaxTransaction struct {
		Available     bool    `json:"available"`
		Date          string  `json:"date,omitempty"`
		Amount        float64 `json:"amount"`
		Category      string  `json:"category_lv1,omitempty"`
		Description   string  `json:"description,omitempty"`
		PaymentMethod string  `json:"payment_method,omitempty"`
	}
)

// FilterKind returns the rows of one kind, preserving input order.
func FilterKind(rows []core.Transaction, kind core.Kind) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, tx := range rows {
		if tx.Kind == kind {
			out = append(out, tx)
		}
	}
	return out
}

// FilterWindow returns the rows whose date falls inside the window.
func FilterWindow(rows []core.Transaction, w core.Window) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, tx := range rows {
		if w.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

// MonthlySeries sums absolute amounts per canonical year-month key, ordered
// chronologically.
func MonthlySeries(rows []core.Transaction) []MonthTotal {
	totals := make(map[string]float64)
	for _, tx := range rows {
		totals[core.MonthKey(tx.Date)] += tx.AmountAbs
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MonthTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthTotal{Month: k, Total: totals[k]})
	}
	return out
}

// TopCategories sums absolute amounts per category and returns the top n,
// descending by amount. Ties keep first-seen category order: the sort is
// stable over the first-occurrence sequence, so equal amounts never reorder
// between runs.
func TopCategories(rows []core.Transaction, n int) []CategoryAmount {
	totals := make(map[string]float64)
	var order []string
	for _, tx := range rows {
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.AmountAbs
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryAmount{Category: cat, Amount: totals[cat]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount > out[j].Amount
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CalcMoM derives the month-over-month change from an ordered monthly
// series. A zero previous month yields an unavailable rate, not an infinity.
func CalcMoM(series []MonthTotal) MoMChange {
	if len(series) < 2 {
		return MoMChange{Available: false}
	}

	cur := series[len(series)-1]
	prev := series[len(series)-2]

	mom := MoMChange{
		Available:     true,
		CurrentMonth:  cur.Month,
		PrevMonth:     prev.Month,
		CurrentAmount: cur.Total,
		PrevAmount:    prev.Total,
	}
	if prev.Total != 0 {
		mom.ChangeRate = (cur.Total - prev.Total) / prev.Total
		mom.HasRate = true
	}
	return mom
}

// MaxTx finds the largest expense by absolute amount. On equal amounts the
// earlier row wins, matching the deterministic-output requirement.
func MaxTx(rows []core.Transaction) MaxTransaction {
	if len(rows) == 0 {
		return MaxTransaction{Available: false}
	}

	best := rows[0]
	for _, tx := range rows[1:] {
		if tx.AmountAbs > best.AmountAbs {
			best = tx
		}
	}
	return MaxTransaction{
		Available:     true,
		Date:          best.Date.Format("2006-01-02"),
		Amount:        best.AmountAbs,
		Category:      best.Category,
		Description:   best.Description,
		PaymentMethod: best.PaymentMethod,
	}
}

// distinctDays counts the distinct calendar dates present in rows.
func distinctDays(rows []core.Transaction) int {
	days := make(map[string]struct{})
	for _, tx := range rows {
		days[tx.Date.Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

// sumAbs totals the absolute amounts of rows.
func sumAbs(rows []core.Transaction) float64 {
	var total float64
	for _, tx := range rows {
		total += tx.AmountAbs
	}
	return total
}
