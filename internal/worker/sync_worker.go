// Package worker mirrors stored transactions into a spreadsheet in response
// to sync messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/amqp"
	"financas/internal/engine"
	applog "financas/internal/log"
	"financas/internal/rules"
	"financas/internal/sheets"
	"financas/internal/storage"
)

// SyncWorker consumes transaction sync messages and appends the referenced
// rows to the configured mirror, tracking sync state in SQLite.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.TransactionWriter
	rules     *rules.Table
	batchSize int
	events    *applog.StructuredLogger
}

func NewSyncWorker(st *storage.SQLiteRepository, mirror sheets.TransactionWriter, batchSize int) *SyncWorker {
	workerLog := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	return &SyncWorker{
		storage:   st,
		mirror:    mirror,
		rules:     rules.Default(),
		batchSize: batchSize,
		events:    applog.NewStructuredLogger(workerLog),
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	stored, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.mirrorTransaction(ctx, stored); err != nil {
		return fmt.Errorf("mirror transaction: %w", err)
	}
	return nil
}

// ProcessPendingTransactions mirrors transactions that never got a sync
// message, as a backup in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		stored, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}
		if err := w.mirrorTransaction(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction", "id", p.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup. Useful
// to recover from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		stored, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}
		if err := w.mirrorTransaction(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// mirrorTransaction appends one stored transaction to the mirror and updates
// its sync state. The effective cost type goes out with the row so the
// spreadsheet matches what the summary shows.
func (w *SyncWorker) mirrorTransaction(ctx context.Context, stored *storage.StoredTransaction) error {
	entry := sheets.MirrorEntry{
		ID:          stored.ID,
		Date:        stored.Transaction.Date,
		Description: stored.Transaction.Description,
		Category:    stored.Transaction.CategoryName(),
		Subcategory: stored.Transaction.SubcategoryName(),
		AmountCents: stored.Transaction.Amount.Cents,
	}

	overrides, err := w.storage.ListOverrides(ctx)
	if err != nil {
		return fmt.Errorf("list overrides: %w", err)
	}
	if classified, ok := engine.Resolve(stored.Transaction, w.rules, engine.NewOverrideSet(overrides)); ok {
		entry.CostType = classified.CostType
	}

	ref, err := w.mirror.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, stored.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", stored.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, stored.ID); err != nil {
		// The append worked; log and move on.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", stored.ID, "error", err)
	}

	w.events.LogTransactionMirrored(ctx,
		stored.Transaction.Description,
		stored.Transaction.Amount.Cents,
		entry.Category,
		entry.Subcategory,
		ref)

	return nil
}
