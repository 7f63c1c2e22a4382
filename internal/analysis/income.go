package analysis

import (
	"fmt"
	"math"
	"sort"
)

// IncomeEstimate projects next-month disposable income from recent expense.
// When no monthly data exists at all it is unavailable; everything else is a
// best-effort estimate with a confidence label.
type IncomeEstimate struct {
	Available   bool     `json:"available"`
	Mode        string   `json:"mode"`
	BaseExpense float64  `json:"base_expense"`
	Expected    float64  `json:"expected_income_next_month"`
	Low         float64  `json:"expected_income_low"`
	High        float64  `json:"expected_income_high"`
	Confidence  string   `json:"confidence"`
	Notes       []string `json:"notes,omitempty"`
}

const incomeEstimationMode = "expense_based_estimation"

// EstimateIncome inverts an assumed savings-rate range through the median of
// the last ExpenseRecentK monthly expense totals:
//
//	income = base_expense / (1 - savings_rate)
//
// A low assumed savings rate implies a smaller income, a high one a larger
// income; the returned bounds are always ordered low <= high regardless of
// the input ordering of the two rates. When fixed costs are known, both
// bounds and the point estimate are floored at
// fixedCostMonthly / FixedCostMaxRatio: fixed costs cannot plausibly exceed
// that share of income.
func EstimateIncome(series []MonthTotal, fixedCostMonthly float64, p Params) IncomeEstimate {
	if len(series) == 0 {
		return IncomeEstimate{
			Available:  false,
			Mode:       incomeEstimationMode,
			Confidence: "Low",
			Notes:      []string{"not enough monthly expense data"},
		}
	}

	recent := recentK(series, p.ExpenseRecentK)
	base := medianOf(totalsOf(recent))

	low := clamp(p.SavingsRateLow, 0, 0.9)
	high := clamp(p.SavingsRateHigh, 0, 0.9)
	if high < low {
		low, high = high, low
	}

	incomeLow := base / (1 - low)
	incomeHigh := base / (1 - high)

	var floorIncome float64
	if fixedCostMonthly > 0 && p.FixedCostMaxRatio > 0 {
		floorIncome = fixedCostMonthly / p.FixedCostMaxRatio
		incomeLow = math.Max(incomeLow, floorIncome)
		incomeHigh = math.Max(incomeHigh, floorIncome)
	}

	mid := (low + high) / 2
	expected := base / (1 - mid)
	if floorIncome > 0 {
		expected = math.Max(expected, floorIncome)
	}

	est := IncomeEstimate{
		Available:   true,
		Mode:        incomeEstimationMode,
		BaseExpense: base,
		Expected:    expected,
		Low:         incomeLow,
		High:        incomeHigh,
		Confidence:  incomeConfidence(recent),
		Notes: []string{
			fmt.Sprintf("estimated from the median of the last %d monthly expense totals", len(recent)),
			fmt.Sprintf("assumed savings rate range %.0f%% to %.0f%%", low*100, high*100),
		},
	}
	if floorIncome > 0 {
		est.Notes = append(est.Notes,
			fmt.Sprintf("floored so fixed costs stay under %.0f%% of income", p.FixedCostMaxRatio*100))
	}
	return est
}

// incomeConfidence labels the estimate from the coefficient of variation of
// the recent months. A zero mean forces Low instead of dividing by zero.
func incomeConfidence(recent []MonthTotal) string {
	totals := totalsOf(recent)
	mean := meanOf(totals)

	cv := math.Inf(1)
	if mean > 0 {
		cv = stddevOf(totals, mean) / mean
	}

	switch {
	case len(recent) >= 3 && cv < 0.25:
		return "High"
	case len(recent) >= 2 && cv < 0.40:
		return "Med"
	default:
		return "Low"
	}
}

// recentK returns the last k entries of a monthly series in chronological
// order, re-sorting defensively on the month key.
func recentK(series []MonthTotal, k int) []MonthTotal {
	s := make([]MonthTotal, len(series))
	copy(s, series)
	sort.Slice(s, func(i, j int) bool { return s[i].Month < s[j].Month })
	if k > 0 && len(s) > k {
		s = s[len(s)-k:]
	}
	return s
}

func totalsOf(series []MonthTotal) []float64 {
	out := make([]float64, len(series))
	for i, m := range series {
		out[i] = m.Total
	}
	return out
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddevOf is the population standard deviation around a precomputed mean.
func stddevOf(vals []float64, mean float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)))
}

// medianOf returns the median of vals without mutating the input.
func medianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
