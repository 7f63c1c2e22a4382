package analysis

import (
	"sort"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

type (
	// FixedCostCandidate is a recurring description-level spend pattern.
	FixedCostCandidate struct {
		Description string  `json:"description"`
		MeanAmount  float64 `json:"mean_amount"`
		Months      int     `json:"months"`
	}

	// FixedCosts is the result of recurring-payment detection. The monthly
	// total sums per-description means; candidates billing less often than
	// monthly inflate it slightly, which is a known approximation kept from
	// the reference behavior.
	FixedCosts struct {
		Candidates            []FixedCostCandidate `json:"candidates"`
		EstimatedMonthlyTotal float64              `json:"estimated_monthly_total"`
	}
)

// DetectFixedCosts finds descriptions recurring in at least three distinct
// calendar months within the given expense rows, capped to the ten largest
// by mean per-occurrence amount.
func DetectFixedCosts(rows []core.Transaction) FixedCosts {
	type stats struct {
		total  float64
		count  int
		months map[string]struct{}
	}

	byDesc := make(map[string]*stats)
	var order []string
	for _, tx := range rows {
		if tx.Description == "" {
			continue
		}
		s, ok := byDesc[tx.Description]
		if !ok {
			s = &stats{months: make(map[string]struct{})}
			byDesc[tx.Description] = s
			order = append(order, tx.Description)
		}
		s.total += tx.AmountAbs
		s.count++
		s.months[core.MonthKey(tx.Date)] = struct{}{}
	}

	var candidates []FixedCostCandidate
	for _, desc := range order {
		s := byDesc[desc]
		if len(s.months) < fixedCostRecurrenceMonths {
			continue
		}
		candidates = append(candidates, FixedCostCandidate{
			Description: desc,
			MeanAmount:  s.total / float64(s.count),
			Months:      len(s.months),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MeanAmount > candidates[j].MeanAmount
	})
	if len(candidates) > fixedCostMaxCandidates {
		candidates = candidates[:fixedCostMaxCandidates]
	}

	var total float64
	for _, c := range candidates {
		total += c.MeanAmount
	}
	return FixedCosts{Candidates: candidates, EstimatedMonthlyTotal: total}
}
