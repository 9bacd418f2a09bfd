// Package engine is the classification and budget-aggregation core. It is a
// pure, synchronous computation over an immutable input snapshot: every call
// recomputes the full pipeline, holds no state and performs no I/O, so
// concurrent calls for different users or periods need no locking.
package engine

import (
	"fmt"

	"financas/internal/core"
	"financas/internal/rules"
)

// Inputs is the immutable snapshot one computation runs over. Callers load
// overrides and custom budgets before invoking so hybrid detection sees the
// complete override state.
type Inputs struct {
	Transactions  []core.Transaction
	Rules         *rules.Table
	Overrides     []core.PreferenceOverride
	CustomBudgets []core.CustomBudget
	Year          int
	Month         int // 1-12, the selected month
}

// Result is the full output of one computation.
type Result struct {
	Categories    []core.CategorySummary
	Summary       core.MonthlySummary
	Monthly       []core.MonthlyAggregate
	Weekly        []core.WeeklyAggregate
	Uncategorized []core.Transaction
	Classified    int
}

// ReconciliationError signals that sum-of-parts no longer equals the whole.
// It can only happen through a programming error in this package, never
// through user input, so callers should treat it as an assertion failure.
type ReconciliationError struct {
	Category string
	Section  core.Section
	Parts    int64
	Whole    int64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation mismatch in %s/%s: subcategories sum to %d, category total is %d",
		e.Section, e.Category, e.Parts, e.Whole)
}

// ComputeSummary runs the whole pipeline: classification, aggregation,
// hybrid splitting, budget reconciliation. Identical inputs always produce
// identical output.
func ComputeSummary(in Inputs) (*Result, error) {
	if in.Rules == nil {
		in.Rules = rules.Default()
	}
	overrides := NewOverrideSet(in.Overrides)
	budgets := indexBudgets(in.CustomBudgets)

	classified := make([]Classified, 0, len(in.Transactions))
	var uncategorized []core.Transaction
	for _, tx := range in.Transactions {
		c, ok := Resolve(tx, in.Rules, overrides)
		if !ok {
			uncategorized = append(uncategorized, tx)
			continue
		}
		classified = append(classified, c)
	}

	month := core.MonthKeyOf(in.Year, in.Month)
	agg := aggregateExpenses(classified)
	categories := buildCategorySummaries(agg, in.Rules, overrides, budgets, month)
	salary := salaryFor(classified, month)
	summary := summarize(categories, salary, month)

	if err := checkConservation(categories); err != nil {
		return nil, err
	}

	return &Result{
		Categories:    categories,
		Summary:       summary,
		Monthly:       agg.monthlySeries(),
		Weekly:        agg.weeklySeries(),
		Uncategorized: uncategorized,
		Classified:    len(classified),
	}, nil
}

// checkConservation verifies the sum-of-parts invariant for every category
// entry after hybrid splitting.
func checkConservation(categories []core.CategorySummary) error {
	for _, c := range categories {
		var parts int64
		for _, s := range c.Subcategories {
			parts += s.SpentCents
		}
		if parts != c.SpentCents {
			return &ReconciliationError{
				Category: c.Name,
				Section:  c.Section,
				Parts:    parts,
				Whole:    c.SpentCents,
			}
		}
	}
	return nil
}
