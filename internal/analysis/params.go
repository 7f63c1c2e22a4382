// Package analysis computes the summary statistics that feed the AI report:
// period aggregates, fixed-cost detection, expense-based income estimation,
// short-term baseline comparison and budget recommendation. Every function
// is pure: a snapshot of classified transactions plus a window in, a freshly
// built result out.
package analysis

// Params is the tunable parameter set for summary computation. Callers
// override individual fields on top of DefaultParams; the effective set is
// echoed back in the summary output.
type Params struct {
	// Spend judgement thresholds on expense / estimated income.
	OverspendRatioOK   float64 `json:"overspend_ratio_ok"`
	OverspendRatioWarn float64 `json:"overspend_ratio_warn"`

	// Income estimation.
	ExpenseRecentK    int     `json:"expense_recent_k"`
	SavingsRateLow    float64 `json:"savings_rate_low"`
	SavingsRateHigh   float64 `json:"savings_rate_high"`
	FixedCostMaxRatio float64 `json:"fixed_cost_max_ratio"`

	// Trend / risk proxies.
	SmallTxThreshold float64 `json:"small_tx_threshold"`
	LateHourStart    int     `json:"late_hour_start"`
	EasyPayPattern   string  `json:"easy_pay_regex"`

	// Budget recommendation.
	BudgetTargetRatio float64 `json:"budget_target_ratio"`
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		OverspendRatioOK:   0.55,
		OverspendRatioWarn: 0.70,

		ExpenseRecentK:    3,
		SavingsRateLow:    0.10,
		SavingsRateHigh:   0.30,
		FixedCostMaxRatio: 0.40,

		SmallTxThreshold: 10_000,
		LateHourStart:    22,
		EasyPayPattern:   `간편|페이|pay|npay|kakao|카카오|토스|toss`,

		BudgetTargetRatio: 0.55,
	}
}

// Fixed design constants of the detectors. Exposed as named constants so
// tests can reference them, but not part of the caller-facing parameter set.
const (
	// fixedCostRecurrenceMonths is the number of distinct calendar months a
	// description must appear in to count as a fixed-cost candidate.
	fixedCostRecurrenceMonths = 3

	// fixedCostMaxCandidates caps the candidate list, largest mean first.
	fixedCostMaxCandidates = 10

	// budgetTopCategories is how many categories a budget recommendation
	// allocates across.
	budgetTopCategories = 8

	// shortTermWindowDays is the default trailing window for the short-term
	// comparison.
	shortTermWindowDays = 30

	// shortTermBaselineMonths is how many recent full months feed the
	// daily-median fallback baseline.
	shortTermBaselineMonths = 3

	// shortTermTopCategories is how many current-window categories the
	// short-term comparison reports.
	shortTermTopCategories = 3

	// overallBaselineMinDays is the minimum distinct days of history for the
	// overall daily-median fallback.
	overallBaselineMinDays = 14
)
