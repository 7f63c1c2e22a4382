// Package worker turns queued report requests into generated, persisted
// reports.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yeoyun/SpendingAnalysis/internal/amqp"
	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
	"github.com/yeoyun/SpendingAnalysis/internal/core"
	"github.com/yeoyun/SpendingAnalysis/internal/report"
	"github.com/yeoyun/SpendingAnalysis/internal/storage"
)

// TransactionReader loads stored transactions for summary building.
type TransactionReader interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// ReportStore persists generated reports.
type ReportStore interface {
	SaveReport(ctx context.Context, rep storage.SavedReport) error
}

// Generator produces a report for a summary.
type Generator interface {
	Generate(ctx context.Context, summary analysis.Summary, mode report.Mode) (report.Report, error)
	Model() string
}

// ReportWorker handles report requests: load transactions, build the
// summary, generate (or reuse) the report, persist it to the database and
// the file cache.
type ReportWorker struct {
	transactions TransactionReader
	reports      ReportStore
	generator    Generator
	cache        *report.Cache
	params       analysis.Params
}

func NewReportWorker(transactions TransactionReader, reports ReportStore, generator Generator, cache *report.Cache, params analysis.Params) *ReportWorker {
	return &ReportWorker{
		transactions: transactions,
		reports:      reports,
		generator:    generator,
		cache:        cache,
		params:       params,
	}
}

// HandleReportRequest processes one queued request. A returned error means
// the message should be requeued; requests that can never succeed (bad mode,
// no data) are logged and dropped.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequestMessage) error {
	mode := report.Mode(msg.Mode)
	if !mode.Valid() {
		slog.WarnContext(ctx, "dropping report request with unknown mode", "mode", msg.Mode)
		return nil
	}

	history, err := w.transactions.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if len(history) == 0 {
		slog.WarnContext(ctx, "dropping report request, no transactions stored", "mode", msg.Mode)
		return nil
	}

	window, err := resolveWindow(history, msg.StartDate, msg.EndDate)
	if err != nil {
		slog.WarnContext(ctx, "dropping report request with bad window",
			"start", msg.StartDate, "end", msg.EndDate, "error", err)
		return nil
	}

	summary := analysis.BuildSummary(history, window, w.params)

	key, err := report.Key(summary, w.params, w.generator.Model())
	if err != nil {
		return fmt.Errorf("compute cache key: %w", err)
	}

	var result report.Report
	if entry, ok := w.cache.Load(mode, key); ok {
		slog.InfoContext(ctx, "report cache hit", "mode", mode, "key", key)
		result = entry.Result
	} else {
		result, err = w.generator.Generate(ctx, summary, mode)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		if _, err := w.cache.Save(mode, key, result, summary); err != nil {
			// The report still exists; losing the file cache only costs a
			// regeneration later.
			slog.ErrorContext(ctx, "failed to write report cache", "error", err, "key", key)
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := w.reports.SaveReport(ctx, storage.SavedReport{
		Mode:        string(mode),
		CacheKey:    key,
		ResultJSON:  resultJSON,
		SummaryJSON: summaryJSON,
		CreatedAt:   time.Now(),
	}); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	slog.InfoContext(ctx, "report generated",
		"mode", mode,
		"key", key,
		"period_start", summary.Period.Start,
		"period_end", summary.Period.End)
	return nil
}

// resolveWindow parses the requested window, falling back to the full data
// range when the request leaves it empty.
func resolveWindow(history []core.Transaction, startDate, endDate string) (core.Window, error) {
	if startDate == "" && endDate == "" {
		w, ok := analysis.DataWindow(history)
		if !ok {
			return core.Window{}, fmt.Errorf("no dates in history")
		}
		return w, nil
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return core.Window{}, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return core.Window{}, fmt.Errorf("parse end date %q: %w", endDate, err)
	}
	return core.NewWindow(start, end)
}
