package core

import "fmt"

const (
	StatusUnbudgeted   BudgetStatus = "unbudgeted"
	StatusWithinBudget BudgetStatus = "within-budget"
	StatusExceeded     BudgetStatus = "exceeded"
)

type (
	// BudgetStatus is recomputed from scratch on every evaluation; there is
	// no persisted transition history.
	BudgetStatus string

	// MonthlyAggregate holds the summed absolute expense for one
	// (category, subcategory) pair in one calendar month.
	MonthlyAggregate struct {
		Category    string
		Subcategory string
		Month       string // "2006-01"
		TotalCents  int64
		Count       int
	}

	// WeeklyAggregate is the ISO-week counterpart of MonthlyAggregate.
	WeeklyAggregate struct {
		Category    string
		Subcategory string
		Week        string // "2006-W02"
		TotalCents  int64
		Count       int
	}

	// SubcategorySummary carries current-month spend and the historical
	// suggested budget for one subcategory.
	SubcategorySummary struct {
		Name                 string
		SpentCents           int64
		SuggestedBudgetCents int64
	}

	// CategorySummary is the per-section view of one top-level category for
	// the selected month. A hybrid category produces two of these, one under
	// Fixed and one under Variable, with independent budgets.
	CategorySummary struct {
		Section       Section
		Name          string
		Hybrid        bool
		SpentCents    int64
		BudgetCents   int64
		Status        BudgetStatus
		Subcategories []SubcategorySummary
	}

	// BucketTotals pairs the budgeted and spent amounts of one rollup bucket.
	BucketTotals struct {
		BudgetCents int64
		SpentCents  int64
	}

	// Alert flags a 50/30/20 bucket whose share of salary exceeds its limit.
	Alert struct {
		Bucket        string
		LimitPercent  float64
		ActualPercent float64
	}

	// MonthlySummary is the month-level reconciliation handed to rendering.
	MonthlySummary struct {
		Month        string // "2006-01"
		SalaryCents  int64
		Fixed        BucketTotals
		Variable     BucketTotals
		Movements    BucketTotals
		BalanceCents int64
		Alerts       []Alert
	}
)

// StatusFor derives the budget status from a budget/spent pair.
func StatusFor(budgetCents, spentCents int64) BudgetStatus {
	switch {
	case budgetCents == 0:
		return StatusUnbudgeted
	case spentCents > budgetCents:
		return StatusExceeded
	default:
		return StatusWithinBudget
	}
}

// ISOWeekKey formats a year and ISO week number as a bucket key.
func ISOWeekKey(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthKeyOf formats a year and month as a bucket key.
func MonthKeyOf(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
