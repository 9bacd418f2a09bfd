package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CostFixed           CostType = "fixed"
	CostVariable        CostType = "variable"
	CostMovementIncome  CostType = "movement-income"
	CostMovementExpense CostType = "movement-expense"
)

const (
	SectionFixed     Section = "Fixed Expenses"
	SectionVariable  Section = "Variable Expenses"
	SectionMovements Section = "Movements"
)

type (
	// CostType is the effective classification of a transaction's spend.
	CostType string

	// Section is the rule-table section a (category, subcategory) pair belongs to.
	Section string

	Date struct {
		time.Time
	}

	// Money is an amount in cents. Transaction amounts are signed:
	// negative = expense/debit, positive = income/credit.
	Money struct {
		Cents int64
	}

	// Transaction is an immutable ingested money movement. Category and
	// Subcategory are nil when the upstream categorizer assigned nothing;
	// a non-nil Category with nil Subcategory is a "general" transaction.
	Transaction struct {
		Date        Date
		Amount      Money
		Category    *string
		Subcategory *string
		Description string
		Merchant    string
	}

	// CategoryRule is a static row of the rule table.
	CategoryRule struct {
		Section     Section
		Category    string
		Subcategory string
	}

	// PreferenceOverride remaps one (category, subcategory) pair to a
	// user-chosen cost type. Only fixed and variable are meaningful here;
	// movement categories never consult overrides.
	PreferenceOverride struct {
		Category    string
		Subcategory string
		CostType    CostType
	}

	// CustomBudget is a user-set budget for a category. A category with two
	// rows, one fixed and one variable, is a hybrid category and keeps
	// independent budgets per section.
	CustomBudget struct {
		CategoryName string
		Subcategory  string // optional
		BudgetCents  int64
		CostType     CostType
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidCostType = errors.New("invalid cost type")
	ErrInvalidSection  = errors.New("invalid section")
	ErrZeroDate        = errors.New("date cannot be zero")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// MonthKey returns the calendar-month bucket key, e.g. "2025-03".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// ISOWeekKey returns the ISO week bucket key, e.g. "2025-W09".
func (d Date) ISOWeekKey() string {
	year, week := d.ISOWeek()
	return ISOWeekKey(year, week)
}

// IsExpense reports whether the amount is a debit.
func (m Money) IsExpense() bool { return m.Cents < 0 }

// Abs returns the magnitude of the amount in cents.
func (m Money) Abs() int64 {
	if m.Cents < 0 {
		return -m.Cents
	}
	return m.Cents
}

func (ct CostType) Validate() error {
	switch ct {
	case CostFixed, CostVariable, CostMovementIncome, CostMovementExpense:
		return nil
	default:
		return ErrInvalidCostType
	}
}

// IsMovement reports whether the cost type belongs to the Movements section.
func (ct CostType) IsMovement() bool {
	return ct == CostMovementIncome || ct == CostMovementExpense
}

func (s Section) Validate() error {
	switch s {
	case SectionFixed, SectionVariable, SectionMovements:
		return nil
	default:
		return ErrInvalidSection
	}
}

// DefaultCostType is the cost type implied by the section when no override
// applies. Movement rows resolve per category, not per section, so the
// section alone maps to the expense side.
func (s Section) DefaultCostType() CostType {
	switch s {
	case SectionFixed:
		return CostFixed
	case SectionVariable:
		return CostVariable
	default:
		return CostMovementExpense
	}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// CategoryName returns the category or "" when unassigned.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// SubcategoryName returns the subcategory or "" when unassigned.
func (t Transaction) SubcategoryName() string {
	if t.Subcategory == nil {
		return ""
	}
	return *t.Subcategory
}

// IsGeneral reports whether the transaction carries a category but no
// subcategory. General spend on hybrid categories is split 50/50.
func (t Transaction) IsGeneral() bool {
	return t.Category != nil && strings.TrimSpace(t.CategoryName()) != "" &&
		(t.Subcategory == nil || strings.TrimSpace(t.SubcategoryName()) == "")
}

func (o PreferenceOverride) Validate() error {
	if strings.TrimSpace(o.Category) == "" {
		return ErrEmptyCategory
	}
	if o.CostType != CostFixed && o.CostType != CostVariable {
		return ErrInvalidCostType
	}
	return nil
}

func (b CustomBudget) Validate() error {
	if strings.TrimSpace(b.CategoryName) == "" {
		return ErrEmptyCategory
	}
	if b.BudgetCents < 0 {
		return ErrInvalidAmount
	}
	if b.CostType != CostFixed && b.CostType != CostVariable {
		return ErrInvalidCostType
	}
	return nil
}

// StrPtr builds an optional category field in place.
func StrPtr(s string) *string { return &s }
