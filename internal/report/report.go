// Package report generates, caches and exports AI spending reports built on
// top of an analysis summary.
package report

// Mode selects which report variant is generated. The full-history report
// reviews the entire period; the short report focuses on the trailing window
// and weekday/weekend planning.
type Mode string

const (
	ModeAll   Mode = "all"
	ModeShort Mode = "short"
)

// Valid reports whether m is a known report mode.
func (m Mode) Valid() bool {
	return m == ModeAll || m == ModeShort
}

type (
	// Sections are the narrative blocks of a report.
	Sections struct {
		IncomeForecast  string `json:"income_forecast"`
		ExpenseVsIncome string `json:"expense_vs_income"`
		Persona         string `json:"persona"`
		Risks           string `json:"risks"`
		Actions         string `json:"actions"`
		Limits          string `json:"limits"`
	}

	// Alert is one rule-based warning the model raised, with the numeric
	// evidence it cited.
	Alert struct {
		Rule           string `json:"rule"`
		Trigger        string `json:"trigger"`
		Evidence       string `json:"evidence"`
		Recommendation string `json:"recommendation"`
	}

	// ActionItem is one concrete step with a measurable weekly target.
	ActionItem struct {
		Title  string `json:"title"`
		How    string `json:"how"`
		Why    string `json:"why"`
		Metric string `json:"metric"`
	}

	// Report is the structured output the model must return.
	Report struct {
		ThreeLines []string     `json:"three_lines"`
		Sections   Sections     `json:"sections"`
		Alerts     []Alert      `json:"alerts"`
		ActionPlan []ActionItem `json:"action_plan"`
	}
)
