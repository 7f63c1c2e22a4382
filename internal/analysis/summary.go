package analysis

import (
	"regexp"
	"strings"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// Spend judgement categories. The ratio of expense to estimated income is
// compared against the OK/Warn thresholds; an unusable income estimate makes
// the judgement explicitly undetermined, never a default "ok".
const (
	JudgementOK           = "ok"
	JudgementWarning      = "warning"
	JudgementCritical     = "critical"
	JudgementUndetermined = "undetermined"
)

type (
	// Metric is a scalar that may be uncomputable. Available distinguishes
	// "computed as zero" from "could not be computed".
	Metric struct {
		Available bool    `json:"available"`
		Value     float64 `json:"value"`
	}

	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	// ExpenseBlock aggregates everything expense-side for the window.
	ExpenseBlock struct {
		Total       float64 `json:"total_expense"`
		DaysInRange int     `json:"days_in_range"`
		AvgDaily    float64 `json:"avg_daily_expense"`
		AvgWeekly   float64 `json:"avg_weekly_expense"`
		AvgMonthly  Metric  `json:"avg_monthly_expense"`

		MonthlySeries []MonthTotal `json:"monthly_expense"`
		MoMChange     MoMChange    `json:"mom_change"`

		SpendRatio     Metric `json:"spend_ratio"`
		SpendJudgement string `json:"spend_judgement"`

		TopCategories5 []CategoryAmount `json:"top_categories_top5"`
		TopCategories3 []CategoryAmount `json:"overspend_top3"`
		MaxTx          MaxTransaction   `json:"max_expense_tx"`

		LateRatio    float64 `json:"late_ratio"`
		SmallTxRatio float64 `json:"small_tx_ratio"`
		EasyPayRatio Metric  `json:"easy_pay_ratio"`

		FixedCandidates  []FixedCostCandidate `json:"fixed_candidates"`
		FixedCostMonthly float64              `json:"fixed_cost_est_monthly"`
		FixedCostRatio   Metric               `json:"fixed_cost_ratio_est"`

		BudgetTargetRatio    float64      `json:"budget_target_ratio"`
		BudgetTotal          Metric       `json:"budget_total"`
		BudgetVariable       Metric       `json:"budget_variable"`
		BudgetRecommendation []BudgetItem `json:"budget_recommendation"`
	}

	// Summary is the complete JSON-serializable output consumed by the
	// report prompt builder, the persona scorer and the HTTP API. Building
	// it twice from the same inputs yields byte-identical JSON.
	Summary struct {
		Period           Period           `json:"period"`
		Income           IncomeEstimate   `json:"income"`
		Expense          ExpenseBlock     `json:"expense"`
		Params           Params           `json:"params"`
		ShortTermCompare ShortTermCompare `json:"short_term_compare"`
	}
)

// BuildSummary computes the full summary for expense rows inside the window,
// using the complete history for the short-term baseline. The input slice is
// never mutated.
func BuildSummary(history []core.Transaction, w core.Window, p Params) Summary {
	expenseAll := FilterKind(history, core.KindExpense)
	expense := FilterWindow(expenseAll, w)

	days := w.Days()
	total := sumAbs(expense)
	avgDaily := total / float64(days)

	series := MonthlySeries(expense)
	var avgMonthly Metric
	if len(series) > 0 {
		avgMonthly = Metric{Available: true, Value: meanOf(totalsOf(series))}
	}

	fixed := DetectFixedCosts(expense)
	income := EstimateIncome(series, fixed.EstimatedMonthlyTotal, p)

	exp := ExpenseBlock{
		Total:       total,
		DaysInRange: days,
		AvgDaily:    avgDaily,
		AvgWeekly:   avgDaily * 7,
		AvgMonthly:  avgMonthly,

		MonthlySeries: series,
		MoMChange:     CalcMoM(series),

		TopCategories5: TopCategories(expense, 5),
		TopCategories3: TopCategories(expense, 3),
		MaxTx:          MaxTx(expense),

		LateRatio:    lateRatio(expense, p.LateHourStart),
		SmallTxRatio: smallTxRatio(expense, p.SmallTxThreshold),
		EasyPayRatio: easyPayRatio(expense, p.EasyPayPattern),

		FixedCandidates:  fixed.Candidates,
		FixedCostMonthly: fixed.EstimatedMonthlyTotal,

		BudgetTargetRatio: p.BudgetTargetRatio,
	}

	if total > 0 {
		exp.FixedCostRatio = Metric{Available: true, Value: fixed.EstimatedMonthlyTotal / total}
	}

	if income.Available && income.Expected > 0 {
		ratio := total / income.Expected
		exp.SpendRatio = Metric{Available: true, Value: ratio}
		switch {
		case ratio < p.OverspendRatioOK:
			exp.SpendJudgement = JudgementOK
		case ratio < p.OverspendRatioWarn:
			exp.SpendJudgement = JudgementWarning
		default:
			exp.SpendJudgement = JudgementCritical
		}

		budgetTotal := income.Expected * p.BudgetTargetRatio
		variable := budgetTotal - fixed.EstimatedMonthlyTotal
		if variable < 0 {
			variable = 0
		}
		exp.BudgetTotal = Metric{Available: true, Value: budgetTotal}
		exp.BudgetVariable = Metric{Available: true, Value: variable}
		exp.BudgetRecommendation = AllocateBudget(expense, budgetTotal, fixed.EstimatedMonthlyTotal, budgetTopCategories)
	} else {
		exp.SpendJudgement = JudgementUndetermined
	}

	return Summary{
		Period: Period{
			Start: w.Start.Format("2006-01-02"),
			End:   w.End.Format("2006-01-02"),
		},
		Income:           income,
		Expense:          exp,
		Params:           p,
		ShortTermCompare: SelectBaseline(expenseAll, w.End, shortTermWindowDays, shortTermBaselineMonths, shortTermTopCategories),
	}
}

// DataWindow returns the [min,max] date range present in the rows, for
// callers that want a summary over everything they have.
func DataWindow(rows []core.Transaction) (core.Window, bool) {
	if len(rows) == 0 {
		return core.Window{}, false
	}
	min, max := rows[0].Date, rows[0].Date
	for _, tx := range rows[1:] {
		if tx.Date.Before(min) {
			min = tx.Date
		}
		if tx.Date.After(max) {
			max = tx.Date
		}
	}
	w, err := core.NewWindow(min, max)
	if err != nil {
		return core.Window{}, false
	}
	return w, true
}

// lateRatio is the share of expense rows at or after the late-hour start.
// Rows without a known hour count in the denominator but can never count as
// late, matching the reference behavior where an unknown hour compares false.
func lateRatio(rows []core.Transaction, lateHour int) float64 {
	if len(rows) == 0 {
		return 0
	}
	var late int
	for _, tx := range rows {
		if tx.HasHour && tx.Hour >= lateHour {
			late++
		}
	}
	return float64(late) / float64(len(rows))
}

func smallTxRatio(rows []core.Transaction, threshold float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	var small int
	for _, tx := range rows {
		if tx.AmountAbs <= threshold {
			small++
		}
	}
	return float64(small) / float64(len(rows))
}

// easyPayRatio is the share of rows whose payment method matches the
// easy-pay pattern, case-insensitively. It is unavailable when no row
// carries a payment method or the pattern does not compile.
func easyPayRatio(rows []core.Transaction, pattern string) Metric {
	if pattern == "" {
		return Metric{}
	}
	var withMethod int
	for _, tx := range rows {
		if tx.PaymentMethod != "" {
			withMethod++
		}
	}
	if withMethod == 0 {
		return Metric{}
	}

	re, err := regexp.Compile("(?i)" + normalizeGroups(pattern))
	if err != nil {
		return Metric{}
	}

	var matched int
	for _, tx := range rows {
		if tx.PaymentMethod != "" && re.MatchString(tx.PaymentMethod) {
			matched++
		}
	}
	return Metric{Available: true, Value: float64(matched) / float64(len(rows))}
}

// normalizeGroups rewrites capturing groups "(" to non-capturing "(?:" so
// user-supplied alternation patterns stay cheap and side-effect free.
func normalizeGroups(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '(' && (i == 0 || pattern[i-1] != '\\') {
			if i+1 < len(pattern) && pattern[i+1] == '?' {
				b.WriteByte('(')
				continue
			}
			b.WriteString("(?:")
			continue
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}
