package storage

import (
	"context"
	"path/filepath"
	"testing"

	"financas/internal/core"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndListTransactions(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{
			Date:        core.NewDate(2025, 3, 10),
			Amount:      core.Money{Cents: -123456},
			Description: "Supermercado",
			Category:    core.StrPtr("Alimentação"),
			Subcategory: core.StrPtr("Supermercado"),
		},
		{
			Date:        core.NewDate(2025, 3, 5),
			Amount:      core.Money{Cents: 500000},
			Description: "Salário março",
			Category:    core.StrPtr("Salário"),
		},
	}

	ids, err := repo.InsertTransactions(ctx, txs)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids = %d, want 2", len(ids))
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("transactions = %d, want 2", len(got))
	}
	// Ordered by date: the salary on the 5th comes first.
	if got[0].Description != "Salário março" {
		t.Fatalf("first = %q, want salary row", got[0].Description)
	}
	if got[1].CategoryName() != "Alimentação" || got[1].SubcategoryName() != "Supermercado" {
		t.Fatalf("category round-trip broken: %q/%q", got[1].CategoryName(), got[1].SubcategoryName())
	}
	if got[1].Amount.Cents != -123456 {
		t.Fatalf("amount = %d", got[1].Amount.Cents)
	}
	if got[1].Date != core.NewDate(2025, 3, 10) {
		t.Fatalf("date = %v", got[1].Date)
	}
}

func TestUpsertOverrideReplaces(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	o := core.PreferenceOverride{Category: "Alimentação", Subcategory: "Supermercado", CostType: core.CostFixed}
	if err := repo.UpsertOverride(ctx, o); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	o.CostType = core.CostVariable
	if err := repo.UpsertOverride(ctx, o); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.ListOverrides(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("overrides = %d, want 1", len(got))
	}
	if got[0].CostType != core.CostVariable {
		t.Fatalf("cost type = %v, want variable", got[0].CostType)
	}

	if err := repo.DeleteOverride(ctx, "Alimentação", "Supermercado"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = repo.ListOverrides(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("overrides after delete = %d, want 0", len(got))
	}
}

func TestUpsertBudgetHybridPair(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	pair := []core.CustomBudget{
		{CategoryName: "Saúde", CostType: core.CostFixed, BudgetCents: 30000},
		{CategoryName: "Saúde", CostType: core.CostVariable, BudgetCents: 20000},
	}
	for _, b := range pair {
		if err := repo.UpsertBudget(ctx, b); err != nil {
			t.Fatalf("upsert %v: %v", b.CostType, err)
		}
	}

	got, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("budgets = %d, want 2 (one per cost type)", len(got))
	}
	if got[0].CostType == got[1].CostType {
		t.Fatalf("expected distinct cost types, got %v twice", got[0].CostType)
	}
}

func TestBudgetValidationRejected(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	bad := core.CustomBudget{CategoryName: "", CostType: core.CostFixed, BudgetCents: 100}
	if err := repo.UpsertBudget(ctx, bad); err == nil {
		t.Fatalf("empty category should be rejected")
	}
	movement := core.CustomBudget{CategoryName: "Investimentos", CostType: core.CostMovementExpense, BudgetCents: 100}
	if err := repo.UpsertBudget(ctx, movement); err == nil {
		t.Fatalf("movement cost type should be rejected")
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	ids, err := repo.InsertTransactions(ctx, []core.Transaction{
		{Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: -1000}, Description: "a"},
		{Date: core.NewDate(2025, 3, 2), Amount: core.Money{Cents: -2000}, Description: "b"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := repo.MarkSynced(ctx, ids[0]); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, ids[1]); err != nil {
		t.Fatalf("mark error: %v", err)
	}

	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("pending after marks: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after marks = %d, want 0", len(pending))
	}

	stored, err := repo.GetTransaction(ctx, ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.SyncStatus != "synced" || stored.Version != 2 {
		t.Fatalf("stored = %q v%d, want synced v2", stored.SyncStatus, stored.Version)
	}
}
