package analysis

import (
	"fmt"
	"sort"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// BudgetItem is one per-category budget recommendation.
type BudgetItem struct {
	Category     string  `json:"category_lv1"`
	Recommended  float64 `json:"recommended_budget"`
	CurrentSpend float64 `json:"current_spend"`
	Diff         float64 `json:"diff"`
	Basis        string  `json:"basis"`
}

// AllocateBudget splits the variable part of a target budget across
// categories in proportion to their share of the most recent (up to) three
// months of spending. An absent or non-positive budget and a lack of
// categorized rows both yield an empty list, not an error.
func AllocateBudget(rows []core.Transaction, budgetTotal, fixedCostMonthly float64, topN int) []BudgetItem {
	if budgetTotal <= 0 || len(rows) == 0 {
		return nil
	}

	variable := budgetTotal - fixedCostMonthly
	if variable < 0 {
		variable = 0
	}

	months := make(map[string]struct{})
	for _, tx := range rows {
		months[core.MonthKey(tx.Date)] = struct{}{}
	}
	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)
	if len(keys) > 3 {
		keys = keys[len(keys)-3:]
	}
	recentMonths := make(map[string]struct{}, len(keys))
	for _, m := range keys {
		recentMonths[m] = struct{}{}
	}

	var recent []core.Transaction
	for _, tx := range rows {
		if _, ok := recentMonths[core.MonthKey(tx.Date)]; ok {
			recent = append(recent, tx)
		}
	}
	if len(recent) == 0 {
		return nil
	}

	topCats := TopCategories(recent, topN)
	var catSum float64
	for _, ca := range topCats {
		catSum += ca.Amount
	}
	if catSum <= 0 {
		return nil
	}

	currentByCat := categoryTotals(rows)

	items := make([]BudgetItem, 0, len(topCats))
	for _, ca := range topCats {
		share := ca.Amount / catSum
		rec := variable * share
		cur := currentByCat[ca.Category]
		items = append(items, BudgetItem{
			Category:     ca.Category,
			Recommended:  rec,
			CurrentSpend: cur,
			Diff:         rec - cur,
			Basis:        fmt.Sprintf("%.1f%% share of the last %d months", share*100, len(keys)),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Recommended > items[j].Recommended
	})
	return items
}
