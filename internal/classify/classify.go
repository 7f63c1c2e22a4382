// Package classify turns raw exported transaction tables into classified
// core.Transaction rows: column names are standardized through an alias
// table, types are coerced, the transaction kind is inferred from an ordered
// rule table, and descriptions are anonymized.
package classify

import (
	"log/slog"
	"strings"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// columnAliases maps standard column names to the header spellings seen in
// real card/bank exports. First match wins per standard column.
var columnAliases = map[string][]string{
	"date":           {"날짜", "date", "Date", "거래일", "거래일자"},
	"time":           {"시간", "time", "Time", "거래시간"},
	"type":           {"타입", "type", "구분", "거래구분"},
	"category_lv1":   {"대분류", "category", "카테고리"},
	"category_lv2":   {"소분류", "subcategory", "세부카테고리"},
	"description":    {"내용", "description", "적요", "메모"},
	"amount":         {"금액", "amount", "금액(원)", "price"},
	"currency":       {"화폐", "currency"},
	"payment_method": {"결제수단", "payment", "결제방법"},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"20060102",
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
}

// Result is the outcome of classifying one raw table. Dropped counts are a
// warning-level signal for the caller; they are not errors unless every row
// was dropped.
type Result struct {
	Transactions   []core.Transaction
	DroppedDates   int
	DroppedAmounts int
}

// Dropped returns the total number of rows removed during cleaning.
func (r *Result) Dropped() int {
	return r.DroppedDates + r.DroppedAmounts
}

type columnIndex map[string]int

func (ci columnIndex) get(row []string, col string) (string, bool) {
	idx, ok := ci[col]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

// resolveColumns maps the raw header onto standard column names. A BOM or
// stray whitespace on header cells is stripped before matching.
func resolveColumns(header []string) (columnIndex, error) {
	ci := make(columnIndex)
	for i, h := range header {
		cell := strings.TrimSpace(strings.ReplaceAll(h, "\ufeff", ""))
		for std, aliases := range columnAliases {
			if _, seen := ci[std]; seen {
				continue
			}
			for _, a := range aliases {
				if cell == a {
					ci[std] = i
					break
				}
			}
		}
	}
	for _, required := range []string{"date", "amount"} {
		if _, ok := ci[required]; !ok {
			return nil, &core.SchemaError{Column: required}
		}
	}
	return ci, nil
}

// Classify converts a raw table (header plus rows of string cells) into
// classified transactions. Rows with an unparsable date or amount are
// dropped and counted; if nothing survives the result is core.ErrEmptyResult.
func Classify(header []string, rows [][]string) (*Result, error) {
	ci, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, row := range rows {
		rawDate, _ := ci.get(row, "date")
		date, ok := parseDate(rawDate)
		if !ok {
			res.DroppedDates++
			continue
		}

		rawAmount, _ := ci.get(row, "amount")
		amount, err := core.ParseAmount(rawAmount)
		if err != nil {
			res.DroppedAmounts++
			continue
		}

		tx := core.Transaction{
			Date:      core.DateOnly(date),
			Amount:    amount,
			AmountAbs: abs(amount),
		}

		if raw, ok := ci.get(row, "time"); ok {
			if hour, ok := parseHour(raw); ok {
				tx.Hour = hour
				tx.HasHour = true
			}
		}

		category, _ := ci.get(row, "category_lv1")
		if category == "" {
			category = core.UncategorizedLabel
		}
		tx.Category = category

		tx.Description, _ = ci.get(row, "description")
		tx.PaymentMethod, _ = ci.get(row, "payment_method")

		typeField, _ := ci.get(row, "type")
		tx.Kind = inferKind(typeField, tx.Description, amount)
		tx.Description = anonymizeDescription(tx)

		res.Transactions = append(res.Transactions, tx)
	}

	if len(res.Transactions) == 0 {
		return nil, core.ErrEmptyResult
	}
	if res.Dropped() > 0 {
		slog.Warn("Dropped unparsable rows during classification",
			"bad_dates", res.DroppedDates,
			"bad_amounts", res.DroppedAmounts,
			"kept", len(res.Transactions))
	}
	return res, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseHour(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
