// Package services orchestrates imports, exports and summary computation
// across storage, the classification engine and the AMQP sync queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/core"
	"financas/internal/csvio"
	"financas/internal/engine"
	"financas/internal/rules"
	"financas/internal/storage"
)

// SyncPublisher publishes sync messages for newly stored transactions.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, version int64) error
}

// ImportReport summarizes one completed import.
type ImportReport struct {
	Imported  int
	Skipped   []csvio.RowDiagnostic
	StoredIDs []int64
}

// ImportService ingests raw CSV text, persists the normalized transactions
// and queues them for mirror sync.
type ImportService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
	onChange  func()
}

func NewImportService(st *storage.SQLiteRepository, publisher SyncPublisher) *ImportService {
	return &ImportService{storage: st, publisher: publisher}
}

// OnChange registers a callback invoked after every successful write, used
// to invalidate summary caches.
func (s *ImportService) OnChange(fn func()) { s.onChange = fn }

// ImportCSV normalizes and persists one CSV upload. The batch is
// all-or-nothing: a storage failure leaves nothing behind, and a fatal
// parse error (unreadable input, zero valid rows) imports nothing.
func (s *ImportService) ImportCSV(ctx context.Context, text string) (*ImportReport, error) {
	parsed, err := csvio.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	txs := make([]core.Transaction, len(parsed.Drafts))
	for i, d := range parsed.Drafts {
		txs[i] = d.Transaction()
	}

	ids, err := s.storage.InsertTransactions(ctx, txs)
	if err != nil {
		return nil, fmt.Errorf("store transactions: %w", err)
	}

	for _, id := range ids {
		if err := s.publishSyncMessage(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"id", id, "error", err)
			// The transaction is stored; the poller will retry the sync.
		}
	}

	s.notifyChange()

	slog.InfoContext(ctx, "CSV import completed",
		"imported", len(ids),
		"skipped", len(parsed.Diagnostics))

	return &ImportReport{
		Imported:  len(ids),
		Skipped:   parsed.Diagnostics,
		StoredIDs: ids,
	}, nil
}

// ExportCSV renders every stored transaction in the canonical format, with
// the resolved cost type in the type column when classification succeeds.
func (s *ImportService) ExportCSV(ctx context.Context) (string, error) {
	txs, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	overrides, err := s.storage.ListOverrides(ctx)
	if err != nil {
		return "", fmt.Errorf("list overrides: %w", err)
	}

	tbl := rules.Default()
	set := engine.NewOverrideSet(overrides)

	rows := make([]csvio.ExportRow, len(txs))
	for i, t := range txs {
		row := csvio.ExportRow{
			Date:        t.Date,
			Description: t.Description,
			Category:    t.CategoryName(),
			AmountCents: t.Amount.Cents,
		}
		if c, ok := engine.Resolve(t, tbl, set); ok {
			row.Type = string(c.CostType)
		}
		rows[i] = row
	}
	return csvio.Export(rows), nil
}

// SaveOverride persists a preference override.
func (s *ImportService) SaveOverride(ctx context.Context, o core.PreferenceOverride) error {
	if err := s.storage.UpsertOverride(ctx, o); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

// DeleteOverride removes a preference override.
func (s *ImportService) DeleteOverride(ctx context.Context, category, subcategory string) error {
	if err := s.storage.DeleteOverride(ctx, category, subcategory); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

// SaveBudget persists a custom budget row.
func (s *ImportService) SaveBudget(ctx context.Context, b core.CustomBudget) error {
	if err := s.storage.UpsertBudget(ctx, b); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

// DeleteBudget removes a custom budget row.
func (s *ImportService) DeleteBudget(ctx context.Context, categoryName string, ct core.CostType) error {
	if err := s.storage.DeleteBudget(ctx, categoryName, ct); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

func (s *ImportService) publishSyncMessage(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id, 1)
}

func (s *ImportService) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}
