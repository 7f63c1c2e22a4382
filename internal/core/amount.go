// Package core holds the transaction domain model shared by the classifier
// and the analysis pipeline.
//
// This file contains amount-string parsing. Card and bank exports write
// amounts with thousands separators, currency suffixes and sometimes
// parenthesized negatives; parsing goes through a decimal value first so the
// cleanup never accumulates float error before the final conversion.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	parenNegative = regexp.MustCompile(`^\((.*)\)$`)
	amountNoise   = regexp.MustCompile(`[^0-9\-\.+]`)
)

// ParseAmount converts an exported amount string to a signed float64.
//
// Accepted forms include "12345", "12,345", "12,345원", "-1234.5",
// "(1234)" (negative), and surrounding whitespace. Returns an error when no
// numeric value survives the cleanup.
//
// Examples:
//
//	ParseAmount("1,234원") -> 1234
//	ParseAmount("(500)")   -> -500
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)

	// Parenthesized negatives: (1234) -> -1234
	if m := parenNegative.FindStringSubmatch(s); m != nil {
		s = "-" + m[1]
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "원", "")
	s = amountNoise.ReplaceAllString(s, "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
