package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
)

// UncategorizedLabel is the sentinel assigned to rows with an empty or
// missing top-level category.
const UncategorizedLabel = "기타"

// IncomeDescriptionLabel replaces the description of income rows during
// anonymization.
const IncomeDescriptionLabel = "입금"

type (
	// Kind is the exhaustive, mutually exclusive classification of a
	// transaction row. Exactly one kind applies to every classified row;
	// downstream aggregations filter by kind and never by amount sign.
	Kind string

	// Transaction is a single classified row. Amount keeps the source sign,
	// AmountAbs is what aggregations consume. Hour is only meaningful when
	// HasHour is true; an absent time-of-day is not midnight.
	Transaction struct {
		Date          time.Time `json:"date"`
		Hour          int       `json:"hour"`
		HasHour       bool      `json:"has_hour"`
		Amount        float64   `json:"amount"`
		AmountAbs     float64   `json:"amount_abs"`
		Kind          Kind      `json:"kind"`
		Category      string    `json:"category_lv1"`
		Description   string    `json:"description"`
		PaymentMethod string    `json:"payment_method"`
	}

	// Window is a closed date interval. Both endpoints are included, so a
	// one-day window has Days() == 1.
	Window struct {
		Start time.Time
		End   time.Time
	}
)

var (
	ErrEmptyResult   = errors.New("no valid rows after cleaning")
	ErrInvalidWindow = errors.New("window end before start")
)

// SchemaError reports a required input column that could not be resolved
// through the alias table. It is fatal for the whole classification step.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindTransfer:
		return true
	}
	return false
}

// NewWindow builds a window from two timestamps, truncated to dates.
func NewWindow(start, end time.Time) (Window, error) {
	s := DateOnly(start)
	e := DateOnly(end)
	if e.Before(s) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: s, End: e}, nil
}

// Days returns the inclusive day count of the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// Contains reports whether t falls inside the window, ignoring time-of-day.
func (w Window) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the canonical year-month key, e.g. "2025-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// IsWeekend reports whether t is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
