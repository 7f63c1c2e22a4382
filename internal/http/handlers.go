package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/amqp"
	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/core"
	"github.com/yeoyun/SpendingAnalysis/internal/ingest"
	"github.com/yeoyun/SpendingAnalysis/internal/persona"
	"github.com/yeoyun/SpendingAnalysis/internal/report"
	"github.com/yeoyun/SpendingAnalysis/internal/storage"
)

const maxImportBytes = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type importResponse struct {
	Imported       int `json:"imported"`
	DroppedDates   int `json:"dropped_dates"`
	DroppedAmounts int `json:"dropped_amounts"`
}

// handleImport replaces the stored transaction set with the uploaded CSV.
// Accepts either a multipart form with a "file" field or a raw CSV body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var body = r.Body
	if mf, _, err := r.FormFile("file"); err == nil {
		defer mf.Close()
		body = mf
	}

	result, err := ingest.Load(body)
	if err != nil {
		var schemaErr *core.SchemaError
		if errors.As(err, &schemaErr) || errors.Is(err, core.ErrEmptyResult) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read csv: %v", err))
		return
	}
	if len(result.Transactions) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no usable rows in upload")
		return
	}

	if err := s.transactions.ReplaceTransactions(r.Context(), result.Transactions); err != nil {
		slog.ErrorContext(r.Context(), "store transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store transactions")
		return
	}
	s.summaryCache.Invalidate()

	writeJSON(w, http.StatusOK, importResponse{
		Imported:       len(result.Transactions),
		DroppedDates:   result.DroppedDates,
		DroppedAmounts: result.DroppedAmounts,
	})
}

// parseWindow reads optional start/end query parameters. When both are
// absent the window covering all stored data is used.
func (s *Server) parseWindow(r *http.Request, history []core.Transaction) (core.Window, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" && endStr == "" {
		w, ok := analysis.DataWindow(history)
		if !ok {
			return core.Window{}, errors.New("no transaction data loaded")
		}
		return w, nil
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return core.Window{}, fmt.Errorf("invalid start date %q", startStr)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return core.Window{}, fmt.Errorf("invalid end date %q", endStr)
	}
	win, err := core.NewWindow(start, end)
	if err != nil {
		return core.Window{}, errors.New("end date precedes start date")
	}
	return win, nil
}

func (s *Server) buildSummary(r *http.Request) (analysis.Summary, int, error) {
	history, err := s.transactions.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "load transactions", "error", err)
		return analysis.Summary{}, http.StatusInternalServerError, errors.New("failed to load transactions")
	}
	if len(history) == 0 {
		return analysis.Summary{}, http.StatusNotFound, errors.New("no transaction data loaded")
	}
	win, err := s.parseWindow(r, history)
	if err != nil {
		return analysis.Summary{}, http.StatusBadRequest, err
	}

	key := win.Start.Format("2006-01-02") + "/" + win.End.Format("2006-01-02")
	if cached, ok := s.summaryCache.Get(key); ok {
		return cached, http.StatusOK, nil
	}
	summary := analysis.BuildSummary(history, win, s.params)
	s.summaryCache.Set(key, summary)
	return summary, http.StatusOK, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, status, err := s.buildSummary(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type reportRequest struct {
	Mode  string `json:"mode"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type reportResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// handleRequestReport enqueues a report generation request, or runs it
// synchronously when no queue is configured.
func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !report.Mode(req.Mode).Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown report mode %q", req.Mode))
		return
	}

	msg := amqp.NewReportRequestMessage(req.Mode, req.Start, req.End)

	if s.queue != nil {
		if err := s.queue.PublishReportRequest(r.Context(), msg); err != nil {
			slog.ErrorContext(r.Context(), "publish report request", "error", err, "mode", req.Mode)
			writeError(w, http.StatusServiceUnavailable, "failed to enqueue report request")
			return
		}
		writeJSON(w, http.StatusAccepted, reportResponse{Status: "queued", Mode: req.Mode})
		return
	}

	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "report generation is not configured")
		return
	}
	if err := s.runner.HandleReportRequest(r.Context(), msg); err != nil {
		slog.ErrorContext(r.Context(), "generate report", "error", err, "mode", req.Mode)
		writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Status: "completed", Mode: req.Mode})
}

type latestReportResponse struct {
	Mode      string          `json:"mode"`
	CreatedAt time.Time       `json:"created_at"`
	Result    json.RawMessage `json:"result"`
	Summary   json.RawMessage `json:"summary"`
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = string(report.ModeAll)
	}
	if !report.Mode(mode).Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown report mode %q", mode))
		return
	}

	saved, err := s.reports.LatestReport(r.Context(), mode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no %s report generated yet", mode))
			return
		}
		slog.ErrorContext(r.Context(), "load latest report", "error", err, "mode", mode)
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, latestReportResponse{
		Mode:      saved.Mode,
		CreatedAt: saved.CreatedAt,
		Result:    saved.ResultJSON,
		Summary:   saved.SummaryJSON,
	})
}

// handlePersona infers the spending persona. The default basis works from
// the summary metrics; basis=transactions scores the raw rows against the
// quintile benchmark instead.
func (s *Server) handlePersona(w http.ResponseWriter, r *http.Request) {
	switch basis := r.URL.Query().Get("basis"); basis {
	case "", "summary":
	case "transactions":
		s.handlePersonaFromTransactions(w, r)
		return
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown persona basis %q", basis))
		return
	}

	summary, status, err := s.buildSummary(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, persona.InferFromSummary(summary))
}

func (s *Server) handlePersonaFromTransactions(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	var rows []core.Transaction
	var err error
	if startStr == "" && endStr == "" {
		rows, err = s.transactions.ListTransactions(r.Context())
	} else {
		var start, end time.Time
		if start, err = time.Parse("2006-01-02", startStr); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid start date %q", startStr))
			return
		}
		if end, err = time.Parse("2006-01-02", endStr); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid end date %q", endStr))
			return
		}
		win, werr := core.NewWindow(start, end)
		if werr != nil {
			writeError(w, http.StatusBadRequest, "end date precedes start date")
			return
		}
		rows, err = s.transactions.ListTransactionsInWindow(r.Context(), win)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "load transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "no transaction data loaded")
		return
	}
	writeJSON(w, http.StatusOK, persona.InferFromTransactions(rows))
}

// handleExport renders the latest stored reports plus the persona card as a
// single Markdown document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	in := report.ExportInput{}

	if saved, err := s.reports.LatestReport(r.Context(), string(report.ModeAll)); err == nil {
		if rep, sum, ok := decodeSaved(saved); ok {
			in.ResultAll = rep
			in.SummaryAll = sum
		}
	}
	if saved, err := s.reports.LatestReport(r.Context(), string(report.ModeShort)); err == nil {
		if rep, sum, ok := decodeSaved(saved); ok {
			in.ResultShort = rep
			in.SummaryShort = sum
		}
	}
	if in.ResultAll == nil && in.ResultShort == nil {
		writeError(w, http.StatusNotFound, "no reports generated yet")
		return
	}

	if sum := firstSummary(in); sum != nil {
		if start, err := time.Parse("2006-01-02", sum.Period.Start); err == nil {
			in.Start = start
		}
		if end, err := time.Parse("2006-01-02", sum.Period.End); err == nil {
			in.End = end
		}
		p := persona.InferFromSummary(*sum)
		in.Persona = &p
	}

	now := time.Now()
	doc := report.BuildMarkdown(in, now)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ExportFilename(now)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.ErrorContext(r.Context(), "write export", "error", err)
	}
}

func decodeSaved(saved storage.SavedReport) (*report.Report, *analysis.Summary, bool) {
	var rep report.Report
	if err := json.Unmarshal(saved.ResultJSON, &rep); err != nil {
		slog.Warn("stored report unreadable", "mode", saved.Mode, "error", err)
		return nil, nil, false
	}
	var sum analysis.Summary
	if err := json.Unmarshal(saved.SummaryJSON, &sum); err != nil {
		slog.Warn("stored summary unreadable", "mode", saved.Mode, "error", err)
		return nil, nil, false
	}
	return &rep, &sum, true
}

// firstSummary prefers the full-period summary for export metadata.
func firstSummary(in report.ExportInput) *analysis.Summary {
	if in.SummaryAll != nil {
		return in.SummaryAll
	}
	return in.SummaryShort
}
