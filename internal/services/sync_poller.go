package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financas/internal/storage"
)

// SyncPollerConfig holds configuration for the pending-sync poller.
type SyncPollerConfig struct {
	// PollInterval is how often to check for pending transactions (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of transactions to republish per cycle (default: 10)
	BatchSize int
}

// DefaultSyncPollerConfig returns sensible defaults.
func DefaultSyncPollerConfig() SyncPollerConfig {
	return SyncPollerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// SyncPoller republishes sync messages for transactions that are still
// pending. It recovers transactions whose original message was lost, e.g.
// when the broker was down at import time.
type SyncPoller struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
	config    SyncPollerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncPoller(st *storage.SQLiteRepository, publisher SyncPublisher, config SyncPollerConfig) *SyncPoller {
	return &SyncPoller{
		storage:   st,
		publisher: publisher,
		config:    config,
	}
}

// Start begins the polling loop. Returns an error if already running.
func (p *SyncPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync poller is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync poller started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the poller and waits for completion.
func (p *SyncPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync poller stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync poller stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the poller is currently running.
func (p *SyncPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncPoller) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup.
	p.republishBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.republishBatch(ctx)
		}
	}
}

func (p *SyncPoller) republishBatch(ctx context.Context) {
	pending, err := p.storage.GetPendingSyncTransactions(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch pending sync transactions", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	slog.DebugContext(ctx, "Republishing pending sync transactions", "count", len(pending))

	for _, item := range pending {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.publisher.PublishTransactionSync(ctx, item.ID, item.Version); err != nil {
			slog.WarnContext(ctx, "Failed to republish sync message",
				"id", item.ID, "error", err)
			// The next cycle tries again; the row stays pending.
			return
		}
	}
}
