package analysis

import (
	"sort"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

// BaselineKind tags which comparison baseline was selected for the
// short-term window.
type BaselineKind string

const (
	BaselinePreviousWindow BaselineKind = "previous_window"
	BaselineRecentMonths   BaselineKind = "recent_full_months_daily_median"
	BaselineOverallMedian  BaselineKind = "overall_daily_median"
)

type (
	// BaselineMeta carries per-branch diagnostics about the chosen baseline.
	BaselineMeta struct {
		PrevStart        string             `json:"prev_start,omitempty"`
		PrevEnd          string             `json:"prev_end,omitempty"`
		PrevDaysWithData int                `json:"prev_days_with_data,omitempty"`
		MonthsUsed       []string           `json:"months_used,omitempty"`
		MonthTotals      map[string]float64 `json:"months_total,omitempty"`
		DailyMedian      float64            `json:"daily_median,omitempty"`
		DaysUsed         int                `json:"days_used,omitempty"`
	}

	// Baseline is the selected comparison reference, scaled to the window.
	Baseline struct {
		Used           BaselineKind `json:"used"`
		TotalForWindow float64      `json:"total_for_window"`
		Confidence     string       `json:"confidence"`
		Meta           BaselineMeta `json:"meta"`
	}

	// CategoryDelta compares one current-window category against the
	// baseline. Daily-median baselines cannot be decomposed per category, so
	// in those branches the baseline side is explicitly unavailable rather
	// than silently zero.
	CategoryDelta struct {
		Category         string  `json:"category_lv1"`
		Current          float64 `json:"current"`
		Baseline         float64 `json:"baseline"`
		HasBaseline      bool    `json:"has_baseline"`
		Diff             float64 `json:"diff"`
		Pct              float64 `json:"pct"`
		HasPct           bool    `json:"has_pct"`
		BaselineReliable bool    `json:"baseline_reliable"`
	}

	// ShortTermCompare is the short-window comparison block. Available=false
	// carries a reason; none of the numeric fields are meaningful then.
	ShortTermCompare struct {
		Available bool   `json:"available"`
		Reason    string `json:"reason,omitempty"`

		WindowDays   int    `json:"window_days,omitempty"`
		WindowStart  string `json:"window_start,omitempty"`
		WindowEnd    string `json:"window_end,omitempty"`
		DaysWithData int    `json:"days_with_data,omitempty"`

		CurrentTotal  float64          `json:"current_total"`
		WeekdayTotal  float64          `json:"weekday_total"`
		WeekendTotal  float64          `json:"weekend_total"`
		TopCategories []CategoryAmount `json:"top_categories,omitempty"`

		Baseline Baseline `json:"baseline"`

		Diff         float64 `json:"diff"`
		Pct          float64 `json:"pct"`
		HasPct       bool    `json:"has_pct"`
		WeekdayDiff  float64 `json:"weekday_diff"`
		WeekendDiff  float64 `json:"weekend_diff"`
		HasWeekSplit bool    `json:"has_week_split"`

		CategoryDeltas []CategoryDelta `json:"category_deltas_top,omitempty"`
	}
)

// SelectBaseline builds the short-term comparison for the trailing
// windowDays ending at end. Baseline candidates are tried in strict priority
// order, each behind its own sufficiency gate:
//
//	A. previous window of the same length - needs data on at least
//	   max(10, windowDays/3) distinct days; High confidence, and the only
//	   branch with per-category and weekday/weekend deltas.
//	B. daily median across up to baselineMonths full months before the
//	   month of end - needs at least 2 such months; Medium confidence.
//	C. median of all-time daily totals - needs at least 14 distinct days;
//	   Low confidence.
//
// Recency and direct comparability outrank statistical robustness, so the
// order is fixed rather than scored. When no candidate passes its gate the
// result is unavailable; a baseline is never fabricated from less data.
func SelectBaseline(history []core.Transaction, end time.Time, windowDays, baselineMonths, topN int) ShortTermCompare {
	if len(history) == 0 {
		return ShortTermCompare{Available: false, Reason: "no expense history"}
	}

	endDay := core.DateOnly(end)
	curStart := endDay.AddDate(0, 0, -(windowDays - 1))
	curWindow := core.Window{Start: curStart, End: endDay}

	cur := FilterWindow(history, curWindow)
	curDays := distinctDays(cur)
	curTotal := sumAbs(cur)
	curWeekday, curWeekend := weekSplit(cur)
	curTop := TopCategories(cur, topN)

	stc := ShortTermCompare{
		Available:     true,
		WindowDays:    windowDays,
		WindowStart:   curStart.Format("2006-01-02"),
		WindowEnd:     endDay.Format("2006-01-02"),
		DaysWithData:  curDays,
		CurrentTotal:  curTotal,
		WeekdayTotal:  curWeekday,
		WeekendTotal:  curWeekend,
		TopCategories: curTop,
	}

	// Candidate A: previous window.
	prevEnd := curStart.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(windowDays - 1))
	prev := FilterWindow(history, core.Window{Start: prevStart, End: prevEnd})
	prevDays := distinctDays(prev)

	minPrevDays := windowDays / 3
	if minPrevDays < 10 {
		minPrevDays = 10
	}

	if prevDays >= minPrevDays {
		prevTotal := sumAbs(prev)
		stc.Baseline = Baseline{
			Used:           BaselinePreviousWindow,
			TotalForWindow: prevTotal,
			Confidence:     "High",
			Meta: BaselineMeta{
				PrevStart:        prevStart.Format("2006-01-02"),
				PrevEnd:          prevEnd.Format("2006-01-02"),
				PrevDaysWithData: prevDays,
			},
		}
		finishCompare(&stc, prevTotal)

		prevWeekday, prevWeekend := weekSplit(prev)
		stc.WeekdayDiff = curWeekday - prevWeekday
		stc.WeekendDiff = curWeekend - prevWeekend
		stc.HasWeekSplit = true

		prevByCat := categoryTotals(prev)
		for _, ca := range curTop {
			base := prevByCat[ca.Category]
			cd := CategoryDelta{
				Category:         ca.Category,
				Current:          ca.Amount,
				Baseline:         base,
				HasBaseline:      true,
				Diff:             ca.Amount - base,
				BaselineReliable: true,
			}
			if base != 0 {
				cd.Pct = (ca.Amount - base) / base
				cd.HasPct = true
			}
			stc.CategoryDeltas = append(stc.CategoryDeltas, cd)
		}
		return stc
	}

	// Candidate B: daily median of recent full months. The month containing
	// end is likely partial, so only strictly earlier months qualify, each
	// divided by its own count of days with data to absorb gaps.
	endMonth := core.MonthKey(endDay)
	monthsUsed, monthTotals, dailyAvgs := fullMonthDailyAverages(history, endMonth, baselineMonths)

	if len(dailyAvgs) >= 2 {
		dailyMedian := medianOf(dailyAvgs)
		total := dailyMedian * float64(windowDays)
		stc.Baseline = Baseline{
			Used:           BaselineRecentMonths,
			TotalForWindow: total,
			Confidence:     "Medium",
			Meta: BaselineMeta{
				MonthsUsed:  monthsUsed,
				MonthTotals: monthTotals,
				DailyMedian: dailyMedian,
			},
		}
		finishCompare(&stc, total)
		markCategoryDeltasUnavailable(&stc, curTop)
		return stc
	}

	// Candidate C: overall daily median.
	daily := dailyTotals(history)
	if len(daily) >= overallBaselineMinDays {
		dailyMedian := medianOf(daily)
		total := dailyMedian * float64(windowDays)
		stc.Baseline = Baseline{
			Used:           BaselineOverallMedian,
			TotalForWindow: total,
			Confidence:     "Low",
			Meta: BaselineMeta{
				DaysUsed:    len(daily),
				DailyMedian: dailyMedian,
			},
		}
		finishCompare(&stc, total)
		markCategoryDeltasUnavailable(&stc, curTop)
		return stc
	}

	return ShortTermCompare{
		Available: false,
		Reason:    "insufficient data for any comparison baseline",
	}
}

func finishCompare(stc *ShortTermCompare, baselineTotal float64) {
	stc.Diff = stc.CurrentTotal - baselineTotal
	if baselineTotal != 0 {
		stc.Pct = stc.Diff / baselineTotal
		stc.HasPct = true
	}
}

// markCategoryDeltasUnavailable records current amounts with an explicitly
// missing baseline side for the daily-median branches.
func markCategoryDeltasUnavailable(stc *ShortTermCompare, curTop []CategoryAmount) {
	for _, ca := range curTop {
		stc.CategoryDeltas = append(stc.CategoryDeltas, CategoryDelta{
			Category:         ca.Category,
			Current:          ca.Amount,
			HasBaseline:      false,
			BaselineReliable: false,
		})
	}
}

func weekSplit(rows []core.Transaction) (weekday, weekend float64) {
	for _, tx := range rows {
		if core.IsWeekend(tx.Date) {
			weekend += tx.AmountAbs
		} else {
			weekday += tx.AmountAbs
		}
	}
	return weekday, weekend
}

func categoryTotals(rows []core.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, tx := range rows {
		totals[tx.Category] += tx.AmountAbs
	}
	return totals
}

// fullMonthDailyAverages computes per-month daily averages for up to
// maxMonths months strictly before beforeMonth, most recent last.
func fullMonthDailyAverages(rows []core.Transaction, beforeMonth string, maxMonths int) (months []string, totals map[string]float64, dailyAvgs []float64) {
	type monthStats struct {
		total float64
		days  map[string]struct{}
	}
	byMonth := make(map[string]*monthStats)
	for _, tx := range rows {
		m := core.MonthKey(tx.Date)
		if m >= beforeMonth {
			continue
		}
		s, ok := byMonth[m]
		if !ok {
			s = &monthStats{days: make(map[string]struct{})}
			byMonth[m] = s
		}
		s.total += tx.AmountAbs
		s.days[tx.Date.Format("2006-01-02")] = struct{}{}
	}

	keys := make([]string, 0, len(byMonth))
	for m := range byMonth {
		keys = append(keys, m)
	}
	sort.Strings(keys)
	if maxMonths > 0 && len(keys) > maxMonths {
		keys = keys[len(keys)-maxMonths:]
	}

	totals = make(map[string]float64, len(keys))
	for _, m := range keys {
		s := byMonth[m]
		if len(s.days) == 0 {
			continue
		}
		months = append(months, m)
		totals[m] = s.total
		dailyAvgs = append(dailyAvgs, s.total/float64(len(s.days)))
	}
	return months, totals, dailyAvgs
}

// dailyTotals sums absolute amounts per calendar date, returned in date
// order so the downstream median is deterministic.
func dailyTotals(rows []core.Transaction) []float64 {
	byDay := make(map[string]float64)
	for _, tx := range rows {
		byDay[tx.Date.Format("2006-01-02")] += tx.AmountAbs
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]float64, 0, len(days))
	for _, d := range days {
		out = append(out, byDay[d])
	}
	return out
}
