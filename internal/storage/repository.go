// Package storage persists transactions, preference overrides and custom
// budgets in SQLite. Queries are hand-written; the schema lives in the
// embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

const isoDate = "2006-01-02"

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

// StoredTransaction carries a persisted transaction together with its row
// identity and sync state.
type StoredTransaction struct {
	ID          int64
	Transaction core.Transaction
	SyncStatus  string
	Version     int64
	CreatedAt   time.Time
}

// PendingSyncTransaction is the minimal row data queued for mirror sync.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// InsertTransactions persists a batch atomically and returns the new row
// IDs in input order. A failed row rolls back the whole batch; imports are
// all-or-nothing.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) ([]int64, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (tx_date, amount_cents, description, merchant, category, subcategory)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(txs))
	for _, t := range txs {
		res, err := stmt.ExecContext(ctx,
			dateString(t.Date), t.Amount.Cents, t.Description, t.Merchant, t.Category, t.Subcategory)
		if err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction batch: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(ids))
	return ids, nil
}

// ListTransactions returns every persisted transaction, oldest first. The
// engine wants full history so suggested budgets see all months.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	stored, err := r.listStored(ctx, `
		SELECT id, tx_date, amount_cents, description, merchant, category, subcategory, sync_status, version, created_at
		FROM transactions ORDER BY tx_date, id`)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, len(stored))
	for i, s := range stored {
		out[i] = s.Transaction
	}
	return out, nil
}

// ListStoredTransactions returns full rows, oldest first.
func (r *SQLiteRepository) ListStoredTransactions(ctx context.Context) ([]StoredTransaction, error) {
	return r.listStored(ctx, `
		SELECT id, tx_date, amount_cents, description, merchant, category, subcategory, sync_status, version, created_at
		FROM transactions ORDER BY tx_date, id`)
}

// GetTransaction retrieves a single row by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*StoredTransaction, error) {
	rows, err := r.listStored(ctx, `
		SELECT id, tx_date, amount_cents, description, merchant, category, subcategory, sync_status, version, created_at
		FROM transactions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return &rows[0], nil
}

func (r *SQLiteRepository) listStored(ctx context.Context, query string, args ...any) ([]StoredTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []StoredTransaction
	for rows.Next() {
		var (
			s        StoredTransaction
			date     string
			category sql.NullString
			sub      sql.NullString
		)
		if err := rows.Scan(&s.ID, &date, &s.Transaction.Amount.Cents,
			&s.Transaction.Description, &s.Transaction.Merchant,
			&category, &sub, &s.SyncStatus, &s.Version, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if date != "" {
			t, err := time.Parse(isoDate, date)
			if err != nil {
				return nil, fmt.Errorf("parse stored date %q: %w", date, err)
			}
			s.Transaction.Date = core.NewDate(t.Year(), int(t.Month()), t.Day())
		}
		if category.Valid {
			s.Transaction.Category = core.StrPtr(category.String)
		}
		if sub.Valid {
			s.Transaction.Subcategory = core.StrPtr(sub.String)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertOverride creates or replaces the override for one pair.
func (r *SQLiteRepository) UpsertOverride(ctx context.Context, o core.PreferenceOverride) error {
	if err := o.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preference_overrides (category, subcategory, cost_type)
		VALUES (?, ?, ?)
		ON CONFLICT (category, subcategory)
		DO UPDATE SET cost_type = excluded.cost_type, updated_at = CURRENT_TIMESTAMP`,
		o.Category, o.Subcategory, string(o.CostType))
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	slog.InfoContext(ctx, "Preference override saved",
		"category", o.Category, "subcategory", o.Subcategory, "cost_type", o.CostType)
	return nil
}

// DeleteOverride removes the override for one pair; the section default
// applies again afterwards.
func (r *SQLiteRepository) DeleteOverride(ctx context.Context, category, subcategory string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM preference_overrides WHERE category = ? AND subcategory = ?`,
		category, subcategory)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListOverrides(ctx context.Context) ([]core.PreferenceOverride, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, subcategory, cost_type FROM preference_overrides ORDER BY category, subcategory`)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	var out []core.PreferenceOverride
	for rows.Next() {
		var o core.PreferenceOverride
		var ct string
		if err := rows.Scan(&o.Category, &o.Subcategory, &ct); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.CostType = core.CostType(ct)
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpsertBudget creates or replaces the budget row for (category, cost type).
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.CustomBudget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO custom_budgets (category_name, subcategory, cost_type, budget_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (category_name, cost_type)
		DO UPDATE SET budget_cents = excluded.budget_cents, subcategory = excluded.subcategory, updated_at = CURRENT_TIMESTAMP`,
		b.CategoryName, b.Subcategory, string(b.CostType), b.BudgetCents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	slog.InfoContext(ctx, "Custom budget saved",
		"category", b.CategoryName, "cost_type", b.CostType, "budget_cents", b.BudgetCents)
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, categoryName string, ct core.CostType) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_budgets WHERE category_name = ? AND cost_type = ?`,
		categoryName, string(ct))
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.CustomBudget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_name, subcategory, cost_type, budget_cents FROM custom_budgets ORDER BY category_name, cost_type`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.CustomBudget
	for rows.Next() {
		var b core.CustomBudget
		var ct string
		if err := rows.Scan(&b.CategoryName, &b.Subcategory, &ct, &b.BudgetCents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.CostType = core.CostType(ct)
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetPendingSyncTransactions returns rows waiting for the mirror worker.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at FROM transactions
		WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync transaction: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced marks a transaction as successfully mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'synced', version = version + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a transaction whose mirror attempt failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = 'error', version = version + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func dateString(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(isoDate)
}
