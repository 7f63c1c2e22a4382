package classify

import (
	"strings"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// kindRule is one entry in the ordered kind-inference table. Rules are
// evaluated top to bottom and the first match wins; transfer keywords come
// first so "transfer deposit" style descriptions never get tagged as income.
type kindRule struct {
	name     string
	keywords []string
	kind     core.Kind
}

var kindRules = []kindRule{
	{
		name:     "transfer-keywords",
		keywords: []string{"이체", "송금", "transfer", "remittance"},
		kind:     core.KindTransfer,
	},
	{
		name:     "income-keywords",
		keywords: []string{"수입", "입금", "급여", "환불", "income", "salary", "deposit", "refund"},
		kind:     core.KindIncome,
	},
	{
		name:     "expense-keywords",
		keywords: []string{"지출", "결제", "구매", "expense", "payment", "purchase"},
		kind:     core.KindExpense,
	},
}

func (r kindRule) matches(text string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// inferKind applies the rule table to the type field first, then the
// description, and finally falls back to the amount sign. The sign is the
// weakest signal: exports disagree on sign conventions, so it only decides
// when no keyword matched anywhere.
func inferKind(typeField, description string, amount float64) core.Kind {
	typeField = strings.ToLower(strings.TrimSpace(typeField))
	description = strings.ToLower(strings.TrimSpace(description))

	for _, r := range kindRules {
		if typeField != "" && r.matches(typeField) {
			return r.kind
		}
	}
	for _, r := range kindRules {
		if description != "" && r.matches(description) {
			return r.kind
		}
	}

	if amount < 0 {
		return core.KindExpense
	}
	return core.KindIncome
}
