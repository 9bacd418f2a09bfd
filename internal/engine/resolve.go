package engine

import (
	"strings"

	"financas/internal/core"
	"financas/internal/rules"
)

// Classified pairs a transaction with its effective cost type and the rule
// row the amount is attributed to. For general transactions (no
// subcategory) Rule is the category's first matching row.
type Classified struct {
	Tx       core.Transaction
	CostType core.CostType
	Rule     core.CategoryRule
}

// OverrideSet indexes preference overrides for lookup during resolution.
type OverrideSet struct {
	byPair map[[2]string]core.CostType
}

// NewOverrideSet builds the lookup index. Later rows win on duplicates.
func NewOverrideSet(overrides []core.PreferenceOverride) OverrideSet {
	s := OverrideSet{byPair: make(map[[2]string]core.CostType, len(overrides))}
	for _, o := range overrides {
		s.byPair[overrideKey(o.Category, o.Subcategory)] = o.CostType
	}
	return s
}

// Lookup returns the override for a (category, subcategory) pair.
func (s OverrideSet) Lookup(category, subcategory string) (core.CostType, bool) {
	ct, ok := s.byPair[overrideKey(category, subcategory)]
	return ct, ok
}

func overrideKey(category, subcategory string) [2]string {
	return [2]string{
		strings.ToLower(strings.TrimSpace(category)),
		strings.ToLower(strings.TrimSpace(subcategory)),
	}
}

// Resolve determines the effective cost type of one transaction.
//
// Movement categories resolve by name and never consult overrides. Anything
// else resolves through the override table, falling back to the rule-table
// section default. A transaction whose (category, subcategory) pair matches
// no rule row is unclassifiable: ok is false and the caller keeps it in the
// uncategorized bucket instead of dropping it.
func Resolve(tx core.Transaction, tbl *rules.Table, overrides OverrideSet) (Classified, bool) {
	category := strings.TrimSpace(tx.CategoryName())
	if category == "" {
		return Classified{}, false
	}
	subcategory := strings.TrimSpace(tx.SubcategoryName())

	rule, ok := ruleFor(tbl, category, subcategory)
	if !ok {
		return Classified{}, false
	}

	if kind, isMovement := rules.MovementKind(category); isMovement {
		return Classified{Tx: tx, CostType: kind, Rule: rule}, true
	}

	if ct, found := overrides.Lookup(rule.Category, rule.Subcategory); found {
		return Classified{Tx: tx, CostType: ct, Rule: rule}, true
	}
	return Classified{Tx: tx, CostType: rule.Section.DefaultCostType(), Rule: rule}, true
}

// ruleFor picks the attribution target: the exact pair when a subcategory is
// present, the category's first row for general transactions.
func ruleFor(tbl *rules.Table, category, subcategory string) (core.CategoryRule, bool) {
	if subcategory != "" {
		return tbl.Find(category, subcategory)
	}
	return tbl.FirstForCategory(category)
}

// SubcategoryCostType resolves the effective cost type of one rule row,
// override-aware. Used when grouping a category's subcategories into
// sections.
func SubcategoryCostType(rule core.CategoryRule, overrides OverrideSet) core.CostType {
	if kind, isMovement := rules.MovementKind(rule.Category); isMovement {
		return kind
	}
	if ct, found := overrides.Lookup(rule.Category, rule.Subcategory); found {
		return ct
	}
	return rule.Section.DefaultCostType()
}
