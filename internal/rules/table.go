// Package rules holds the static category taxonomy: the mapping of
// (category, subcategory) pairs to their rule-table section. The table is
// immutable at runtime; user preference overrides live elsewhere and are
// consulted by the classification resolver, never here.
package rules

import (
	"strings"

	"financas/internal/core"
)

// Table is an indexed view over the rule rows.
type Table struct {
	rows    []core.CategoryRule
	byPair  map[pairKey]core.CategoryRule
	byCat   map[string][]core.CategoryRule
}

type pairKey struct {
	category    string
	subcategory string
}

// New builds a Table from rule rows. The (category, subcategory) pair must
// be unique; a duplicate row silently wins over the earlier one only in
// tests that construct tables by hand, the shipped table has no duplicates.
func New(rows []core.CategoryRule) *Table {
	t := &Table{
		rows:   rows,
		byPair: make(map[pairKey]core.CategoryRule, len(rows)),
		byCat:  make(map[string][]core.CategoryRule),
	}
	for _, r := range rows {
		t.byPair[keyOf(r.Category, r.Subcategory)] = r
		t.byCat[norm(r.Category)] = append(t.byCat[norm(r.Category)], r)
	}
	return t
}

// Default returns the built-in taxonomy.
func Default() *Table {
	return New(defaultRows)
}

// Find looks up the rule row for an exact (category, subcategory) pair.
func (t *Table) Find(category, subcategory string) (core.CategoryRule, bool) {
	r, ok := t.byPair[keyOf(category, subcategory)]
	return r, ok
}

// FirstForCategory returns the first rule row of a category. It is the
// default target for "general" transactions that carry no subcategory.
func (t *Table) FirstForCategory(category string) (core.CategoryRule, bool) {
	rs := t.byCat[norm(category)]
	if len(rs) == 0 {
		return core.CategoryRule{}, false
	}
	return rs[0], true
}

// RowsForCategory returns every rule row of a category.
func (t *Table) RowsForCategory(category string) []core.CategoryRule {
	return t.byCat[norm(category)]
}

// SectionOf returns the section a category belongs to, going by its first
// rule row.
func (t *Table) SectionOf(category string) (core.Section, bool) {
	r, ok := t.FirstForCategory(category)
	if !ok {
		return "", false
	}
	return r.Section, true
}

// Rows returns all rule rows in declaration order.
func (t *Table) Rows() []core.CategoryRule {
	return t.rows
}

func keyOf(category, subcategory string) pairKey {
	return pairKey{category: norm(category), subcategory: norm(subcategory)}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
