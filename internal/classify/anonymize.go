package classify

import (
	"regexp"
	"strings"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// nameToken matches 2-4 character Hangul tokens, optionally prefixed by a
// payment-app label, which is how personal names show up in transfer memos.
var nameToken = regexp.MustCompile(`(토스\s*)?[가-힣]{2,4}`)

// anonymizeDescription strips personal data from descriptions. Transfer rows
// lose name-like tokens; income rows collapse to a single generic label.
// This is one-way: the original description is not kept anywhere.
func anonymizeDescription(tx core.Transaction) string {
	switch tx.Kind {
	case core.KindTransfer:
		cleaned := strings.TrimSpace(nameToken.ReplaceAllString(tx.Description, ""))
		if cleaned == "" {
			if tx.Category != "" && tx.Category != core.UncategorizedLabel {
				return tx.Category
			}
			return "이체"
		}
		return cleaned
	case core.KindIncome:
		return core.IncomeDescriptionLabel
	default:
		return tx.Description
	}
}
