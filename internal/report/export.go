package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/persona"
)

// ExportInput bundles everything the Markdown export can include. Any nil
// part is skipped, so a partial export (say, only the full report) still
// renders.
type ExportInput struct {
	Start, End time.Time

	Persona *persona.Result

	ResultAll  *Report
	SummaryAll *analysis.Summary

	ResultShort  *Report
	SummaryShort *analysis.Summary
}

// BuildMarkdown renders the report page as a single Markdown document:
// header, persona card, full-period report, short-term report.
func BuildMarkdown(in ExportInput, now time.Time) []byte {
	var b strings.Builder

	b.WriteString("# 🧠 AI 소비 분석 리포트\n\n")
	fmt.Fprintf(&b, "> **생성일시:** %s  \n", now.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "> **분석 기간:** %s ~ %s\n", dateOrDash(in.Start), dateOrDash(in.End))

	if in.Persona != nil {
		writePersona(&b, in.Persona)
	}
	if in.ResultAll != nil {
		writeReport(&b, "전체 기간 리포트", in.ResultAll, in.SummaryAll)
	}
	if in.ResultShort != nil {
		writeReport(&b, "단기(최근 30일) 리포트", in.ResultShort, in.SummaryShort)
	}

	return []byte(b.String())
}

// ExportFilename names the download artifact with the export timestamp.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("ai_report_%s.md", now.Format("20060102_150405"))
}

func writePersona(b *strings.Builder, p *persona.Result) {
	b.WriteString("\n---\n")
	b.WriteString("\n## 소비 페르소나\n")
	if p.Card.Title != "" {
		fmt.Fprintf(b, "\n**%s**\n", p.Card.Title)
		if p.Card.Subtitle != "" {
			fmt.Fprintf(b, "\n%s\n", p.Card.Subtitle)
		}
	} else {
		fmt.Fprintf(b, "\n**%s**\n", p.PersonaKey)
	}
	fmt.Fprintf(b, "\n- 예상 소득: %s\n", won(float64(p.EstimatedIncome)))
	fmt.Fprintf(b, "- 소득 분위(추정): %.1f / 5\n", p.ExpectedQuintile)
	if p.Card.CoachHint != "" {
		fmt.Fprintf(b, "- 코칭 힌트: %s\n", p.Card.CoachHint)
	}
}

func writeReport(b *strings.Builder, title string, rep *Report, summary *analysis.Summary) {
	b.WriteString("\n---\n")
	fmt.Fprintf(b, "\n## %s\n", title)

	if summary != nil {
		writeSummaryBox(b, summary)
	}

	if len(rep.ThreeLines) > 0 {
		b.WriteString("\n### 한눈에 보기\n\n")
		for _, line := range rep.ThreeLines {
			fmt.Fprintf(b, "- %s\n", strings.TrimSpace(line))
		}
	}

	sections := []struct {
		heading string
		body    string
	}{
		{"수입 전망", rep.Sections.IncomeForecast},
		{"지출 vs 수입", rep.Sections.ExpenseVsIncome},
		{"소비 성향", rep.Sections.Persona},
		{"리스크", rep.Sections.Risks},
		{"실행 가이드", rep.Sections.Actions},
		{"한계", rep.Sections.Limits},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		fmt.Fprintf(b, "\n### %s\n\n%s\n", s.heading, strings.TrimSpace(s.body))
	}

	if len(rep.Alerts) > 0 {
		b.WriteString("\n### 경고\n\n")
		b.WriteString("| 규칙 | 트리거 | 근거 | 권고 |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, a := range rep.Alerts {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				cell(a.Rule), cell(a.Trigger), cell(a.Evidence), cell(a.Recommendation))
		}
	}

	if len(rep.ActionPlan) > 0 {
		b.WriteString("\n### 액션 플랜\n\n")
		for i, item := range rep.ActionPlan {
			fmt.Fprintf(b, "%d. **%s**\n", i+1, cell(item.Title))
			if item.How != "" {
				fmt.Fprintf(b, "   - 방법: %s\n", cell(item.How))
			}
			if item.Why != "" {
				fmt.Fprintf(b, "   - 이유: %s\n", cell(item.Why))
			}
			if item.Metric != "" {
				fmt.Fprintf(b, "   - 지표: %s\n", cell(item.Metric))
			}
		}
	}
}

func writeSummaryBox(b *strings.Builder, s *analysis.Summary) {
	exp := s.Expense
	b.WriteString("\n")
	fmt.Fprintf(b, "- 총지출: %s (일평균 %s)\n", won(exp.Total), won(exp.AvgDaily))
	if exp.SpendRatio.Available {
		fmt.Fprintf(b, "- 지출/예상소득: %s (%s)\n", pct(exp.SpendRatio.Value), exp.SpendJudgement)
	}
	if s.Income.Available {
		fmt.Fprintf(b, "- 예상 수입(다음 달): %s ~ %s\n", won(s.Income.Low), won(s.Income.High))
	}
	if len(exp.TopCategories5) > 0 {
		names := make([]string, 0, len(exp.TopCategories5))
		for _, ca := range exp.TopCategories5 {
			names = append(names, ca.Category)
		}
		fmt.Fprintf(b, "- 상위 카테고리: %s\n", strings.Join(names, ", "))
	}
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02")
}

func won(v float64) string {
	return addThousands(fmt.Sprintf("%.0f", v)) + "원"
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// cell makes a string safe inside a Markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > 300 {
		s = string(r[:300])
	}
	return strings.TrimSpace(s)
}

// addThousands inserts commas into a decimal integer string.
func addThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
