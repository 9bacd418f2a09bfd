package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/engine"
	"financas/internal/rules"
	"financas/internal/storage"
)

const (
	summaryCacheSize = 64
	summaryCacheTTL  = 5 * time.Minute
)

// SummaryService loads the input snapshot concurrently, runs the engine and
// caches results per (year, month). Any write through ImportService must
// call Invalidate.
type SummaryService struct {
	storage *storage.SQLiteRepository
	rules   *rules.Table
	cache   *cache.LRUCache[*engine.Result]
	caches  *cache.Manager
}

func NewSummaryService(st *storage.SQLiteRepository) *SummaryService {
	lru := cache.NewLRUCache[*engine.Result](summaryCacheSize, summaryCacheTTL)
	mgr := cache.NewManager()
	mgr.Register(lru)
	mgr.StartCleanup(summaryCacheTTL)

	return &SummaryService{
		storage: st,
		rules:   rules.Default(),
		cache:   lru,
		caches:  mgr,
	}
}

// Cache exposes the underlying cache for cleanup registration.
func (s *SummaryService) Cache() *cache.LRUCache[*engine.Result] { return s.cache }

// Close stops the background cache cleanup.
func (s *SummaryService) Close() {
	s.caches.Stop()
}

// Invalidate drops all cached results. Called after every write; summaries
// for any month can change when history changes.
func (s *SummaryService) Invalidate() {
	s.cache.Clear()
}

// MonthlySummary computes (or returns the cached) full result for one month.
func (s *SummaryService) MonthlySummary(ctx context.Context, year, month int) (*engine.Result, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	key := core.MonthKeyOf(year, month)
	if res, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Summary cache hit", "month", key)
		return res, nil
	}

	in, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}
	in.Year = year
	in.Month = month

	res, err := engine.ComputeSummary(in)
	if err != nil {
		return nil, fmt.Errorf("compute summary: %w", err)
	}

	s.cache.Set(key, res)
	slog.InfoContext(ctx, "Summary computed",
		"month", key,
		"classified", res.Classified,
		"uncategorized", len(res.Uncategorized))
	return res, nil
}

// loadInputs fetches transactions, overrides and budgets in parallel. The
// three queries are independent; SQLite serializes them internally but the
// scans overlap.
func (s *SummaryService) loadInputs(ctx context.Context) (engine.Inputs, error) {
	var (
		txs       []core.Transaction
		overrides []core.PreferenceOverride
		budgets   []core.CustomBudget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.storage.ListTransactions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		overrides, err = s.storage.ListOverrides(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.storage.ListBudgets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return engine.Inputs{}, fmt.Errorf("load summary inputs: %w", err)
	}

	return engine.Inputs{
		Transactions:  txs,
		Rules:         s.rules,
		Overrides:     overrides,
		CustomBudgets: budgets,
	}, nil
}

// Overrides lists the stored preference overrides.
func (s *SummaryService) Overrides(ctx context.Context) ([]core.PreferenceOverride, error) {
	return s.storage.ListOverrides(ctx)
}

// Budgets lists the stored custom budgets.
func (s *SummaryService) Budgets(ctx context.Context) ([]core.CustomBudget, error) {
	return s.storage.ListBudgets(ctx)
}
