package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yeoyun/SpendingAnalysis/internal/core"
)

const dateLayout = "2006-01-02"

// SavedReport is one persisted AI report. Result and summary are stored as
// JSON blobs; the storage layer does not interpret them.
type SavedReport struct {
	ID          int64
	Mode        string
	CacheKey    string
	ResultJSON  []byte
	SummaryJSON []byte
	CreatedAt   time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceTransactions swaps the stored transaction set for a freshly
// classified import. Replace instead of append keeps re-uploads of the same
// statement idempotent.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, rows []core.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (date, hour, amount, amount_abs, kind, category, description, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var hour any
		if row.HasHour {
			hour = row.Hour
		}
		if _, err := stmt.ExecContext(ctx,
			row.Date.Format(dateLayout), hour,
			row.Amount, row.AmountAbs,
			string(row.Kind), row.Category, row.Description, row.PaymentMethod,
		); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "transactions replaced", "count", len(rows))
	return nil
}

// ListTransactions returns every stored transaction in date order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT date, hour, amount, amount_abs, kind, category, description, payment_method
		FROM transactions ORDER BY date, id`)
}

// ListTransactionsInWindow returns the stored transactions inside the
// inclusive date window, in date order.
func (r *SQLiteRepository) ListTransactionsInWindow(ctx context.Context, w core.Window) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT date, hour, amount, amount_abs, kind, category, description, payment_method
		FROM transactions WHERE date >= ? AND date <= ? ORDER BY date, id`,
		w.Start.Format(dateLayout), w.End.Format(dateLayout))
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			dateStr string
			hour    sql.NullInt64
			kind    string
		)
		if err := rows.Scan(&dateStr, &hour, &t.Amount, &t.AmountAbs, &kind, &t.Category, &t.Description, &t.PaymentMethod); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		t.Kind = core.Kind(kind)
		if hour.Valid {
			t.Hour = int(hour.Int64)
			t.HasHour = true
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CountTransactions reports how many rows are stored.
func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// SaveReport upserts a generated report. The same mode and cache key means
// the same inputs, so a regenerated report overwrites the previous row.
func (r *SQLiteRepository) SaveReport(ctx context.Context, rep SavedReport) error {
	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (mode, cache_key, result_json, summary_json, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mode, cache_key) DO UPDATE SET
			result_json = excluded.result_json,
			summary_json = excluded.summary_json,
			created_at = excluded.created_at`,
		rep.Mode, rep.CacheKey, string(rep.ResultJSON), string(rep.SummaryJSON),
		createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	slog.InfoContext(ctx, "report saved", "mode", rep.Mode, "key", rep.CacheKey)
	return nil
}

// LatestReport returns the most recent report for a mode, or sql.ErrNoRows
// when none exists.
func (r *SQLiteRepository) LatestReport(ctx context.Context, mode string) (SavedReport, error) {
	var (
		rep       SavedReport
		result    string
		summary   string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, mode, cache_key, result_json, summary_json, created_at
		FROM reports WHERE mode = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		mode).Scan(&rep.ID, &rep.Mode, &rep.CacheKey, &result, &summary, &createdAt)
	if err != nil {
		return SavedReport{}, err
	}

	rep.ResultJSON = []byte(result)
	rep.SummaryJSON = []byte(summary)
	rep.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return SavedReport{}, fmt.Errorf("parse report timestamp %q: %w", createdAt, err)
	}
	return rep, nil
}
