package engine

import (
	"sort"
	"strings"

	"financas/internal/core"
	"financas/internal/rules"
)

// GeneralBucketName labels the pseudo-subcategory that carries spend not
// attributed to any named subcategory.
const GeneralBucketName = "Geral"

// 50/30/20 rule limits, as fractions of salary.
const (
	fixedShareLimit     = 0.50
	variableShareLimit  = 0.30
	movementsShareLimit = 0.20
)

// budgetIndex groups custom budgets by category name and cost type.
type budgetIndex map[string]map[core.CostType]core.CustomBudget

func indexBudgets(budgets []core.CustomBudget) budgetIndex {
	idx := make(budgetIndex)
	for _, b := range budgets {
		name := strings.ToLower(strings.TrimSpace(b.CategoryName))
		if idx[name] == nil {
			idx[name] = make(map[core.CostType]core.CustomBudget, 2)
		}
		idx[name][b.CostType] = b
	}
	return idx
}

// isHybrid reports whether the user's budgets mark a category hybrid: one
// fixed and one variable budget row for the same name.
func (idx budgetIndex) isHybrid(category string) bool {
	rows := idx[strings.ToLower(strings.TrimSpace(category))]
	if rows == nil {
		return false
	}
	_, hasFixed := rows[core.CostFixed]
	_, hasVariable := rows[core.CostVariable]
	return hasFixed && hasVariable
}

func (idx budgetIndex) lookup(category string, ct core.CostType) (core.CustomBudget, bool) {
	rows := idx[strings.ToLower(strings.TrimSpace(category))]
	if rows == nil {
		return core.CustomBudget{}, false
	}
	b, ok := rows[ct]
	return b, ok
}

// sectionEntry accumulates one (category, section) summary while it is
// being assembled.
type sectionEntry struct {
	section core.Section
	name    string
	hybrid  bool
	subs    []core.SubcategorySummary
	budget  int64
	haveCB  bool // explicit nonzero custom budget
}

// buildCategorySummaries produces the per-section category summaries for
// the selected month. A hybrid category yields two independent entries; its
// general spend is split exactly 50/50 between them.
func buildCategorySummaries(
	agg *aggregates,
	tbl *rules.Table,
	overrides OverrideSet,
	budgets budgetIndex,
	month string,
) []core.CategorySummary {
	entries := make(map[string]*sectionEntry) // key: category|section

	categories := categoriesInPlay(agg, tbl, budgets)
	for _, cat := range categories {
		if kind, isMovement := rules.MovementKind(cat); isMovement {
			if kind == core.CostMovementIncome {
				continue // income categories feed salary, not expense summaries
			}
			buildMovementEntry(entries, agg, tbl, cat, month)
			continue
		}
		buildExpenseEntries(entries, agg, tbl, overrides, budgets, cat, month)
	}

	out := make([]core.CategorySummary, 0, len(entries))
	for _, e := range entries {
		var spent int64
		for _, s := range e.subs {
			spent += s.SpentCents
		}
		budget := e.budget
		if !e.haveCB {
			budget = 0
			for _, s := range e.subs {
				budget += s.SuggestedBudgetCents
			}
		}
		sort.Slice(e.subs, func(i, j int) bool { return e.subs[i].Name < e.subs[j].Name })
		out = append(out, core.CategorySummary{
			Section:       e.section,
			Name:          e.name,
			Hybrid:        e.hybrid,
			SpentCents:    spent,
			BudgetCents:   budget,
			Status:        core.StatusFor(budget, spent),
			Subcategories: e.subs,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return sectionOrder(out[i].Section) < sectionOrder(out[j].Section)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sectionOrder(s core.Section) int {
	switch s {
	case core.SectionFixed:
		return 0
	case core.SectionVariable:
		return 1
	default:
		return 2
	}
}

// categoriesInPlay enumerates category names with aggregate history or a
// custom budget, preserving a deterministic order.
func categoriesInPlay(agg *aggregates, tbl *rules.Table, budgets budgetIndex) []string {
	seen := make(map[string]string) // normalized -> display
	for key := range agg.monthly {
		norm := strings.ToLower(key.category)
		if _, ok := seen[norm]; !ok {
			seen[norm] = key.category
		}
	}
	for _, b := range flattenBudgets(budgets) {
		norm := strings.ToLower(strings.TrimSpace(b.CategoryName))
		if _, ok := seen[norm]; !ok {
			display := b.CategoryName
			if r, ok := tbl.FirstForCategory(b.CategoryName); ok {
				display = r.Category
			}
			seen[norm] = display
		}
	}
	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}

func flattenBudgets(budgets budgetIndex) []core.CustomBudget {
	var out []core.CustomBudget
	for _, rows := range budgets {
		for _, b := range rows {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].CostType < out[j].CostType
	})
	return out
}

func buildMovementEntry(entries map[string]*sectionEntry, agg *aggregates, tbl *rules.Table, cat, month string) {
	e := ensureEntry(entries, core.SectionMovements, displayCategory(tbl, cat), false)
	for _, rule := range tbl.RowsForCategory(cat) {
		appendSub(e, agg, bucketKey{category: rule.Category, subcategory: rule.Subcategory}, rule.Subcategory, month)
	}
	// General movement spend attributes wholly to this single entry.
	cents, _ := agg.spentIn(bucketKey{category: displayCategory(tbl, cat)}, month)
	appendGeneral(e, cents)
}

func buildExpenseEntries(
	entries map[string]*sectionEntry,
	agg *aggregates,
	tbl *rules.Table,
	overrides OverrideSet,
	budgets budgetIndex,
	cat, month string,
) {
	hybrid := budgets.isHybrid(cat)

	// A hybrid category always carries one entry per section, each seeded
	// from its own budget row, even when a month has spend in only one of
	// them.
	if hybrid {
		for _, ct := range []core.CostType{core.CostFixed, core.CostVariable} {
			e := ensureEntry(entries, sectionForCostType(ct), displayCategory(tbl, cat), true)
			applyBudget(e, budgets, ct)
		}
	}

	// Named subcategories file under whichever section they resolve to.
	for _, rule := range tbl.RowsForCategory(cat) {
		ct := SubcategoryCostType(rule, overrides)
		section := sectionForCostType(ct)
		e := ensureEntry(entries, section, rule.Category, hybrid)
		applyBudget(e, budgets, ct)
		appendSub(e, agg, bucketKey{category: rule.Category, subcategory: rule.Subcategory}, rule.Subcategory, month)
	}

	// A budgeted category that has no rule rows still shows up, with its
	// spend keyed at category level only.
	if len(tbl.RowsForCategory(cat)) == 0 {
		for _, ct := range []core.CostType{core.CostFixed, core.CostVariable} {
			if b, ok := budgets.lookup(cat, ct); ok {
				e := ensureEntry(entries, sectionForCostType(ct), b.CategoryName, hybrid)
				applyBudget(e, budgets, ct)
			}
		}
	}

	generalKey := bucketKey{category: displayCategory(tbl, cat)}
	general, _ := agg.spentIn(generalKey, month)
	if general == 0 {
		return
	}

	if hybrid {
		// Deliberate policy: exactly half to each section. An odd cent goes
		// to the variable entry so the two halves always sum to the total.
		fixedHalf := general / 2
		eF := ensureEntry(entries, core.SectionFixed, displayCategory(tbl, cat), true)
		applyBudget(eF, budgets, core.CostFixed)
		appendGeneral(eF, fixedHalf)
		eV := ensureEntry(entries, core.SectionVariable, displayCategory(tbl, cat), true)
		applyBudget(eV, budgets, core.CostVariable)
		appendGeneral(eV, general-fixedHalf)
		return
	}

	// Non-hybrid: 100% to the section the default subcategory resolves to.
	rule, ok := tbl.FirstForCategory(cat)
	if !ok {
		return
	}
	ct := SubcategoryCostType(rule, overrides)
	e := ensureEntry(entries, sectionForCostType(ct), rule.Category, false)
	applyBudget(e, budgets, ct)
	appendGeneral(e, general)
}

func sectionForCostType(ct core.CostType) core.Section {
	switch ct {
	case core.CostFixed:
		return core.SectionFixed
	case core.CostVariable:
		return core.SectionVariable
	default:
		return core.SectionMovements
	}
}

func displayCategory(tbl *rules.Table, cat string) string {
	if r, ok := tbl.FirstForCategory(cat); ok {
		return r.Category
	}
	return cat
}

func ensureEntry(entries map[string]*sectionEntry, section core.Section, name string, hybrid bool) *sectionEntry {
	key := strings.ToLower(name) + "|" + string(section)
	e := entries[key]
	if e == nil {
		e = &sectionEntry{section: section, name: name}
		entries[key] = e
	}
	if hybrid {
		e.hybrid = true
	}
	return e
}

// applyBudget seeds the entry's budget from the matching custom budget row.
// A zero-valued row falls back to the suggested-budget sum, same as an
// absent row; user intent is not distinguishable there.
func (e *sectionEntry) applyBudgetValue(b core.CustomBudget) {
	if b.BudgetCents > 0 {
		e.budget = b.BudgetCents
		e.haveCB = true
	}
}

func applyBudget(e *sectionEntry, budgets budgetIndex, ct core.CostType) {
	if e.haveCB {
		return
	}
	if ct != core.CostFixed && ct != core.CostVariable {
		return
	}
	if b, ok := budgets.lookup(e.name, ct); ok {
		e.applyBudgetValue(b)
	}
}

func appendSub(e *sectionEntry, agg *aggregates, key bucketKey, name, month string) {
	spent, _ := agg.spentIn(key, month)
	suggested := agg.suggestedBudget(key)
	if spent == 0 && suggested == 0 {
		return
	}
	e.subs = append(e.subs, core.SubcategorySummary{
		Name:                 name,
		SpentCents:           spent,
		SuggestedBudgetCents: suggested,
	})
}

func appendGeneral(e *sectionEntry, cents int64) {
	if cents == 0 {
		return
	}
	e.subs = append(e.subs, core.SubcategorySummary{
		Name:       GeneralBucketName,
		SpentCents: cents,
	})
}

// summarize rolls the category summaries into the three expense buckets,
// computes balance and the 50/30/20 alerts.
func summarize(categories []core.CategorySummary, salaryCents int64, month string) core.MonthlySummary {
	s := core.MonthlySummary{Month: month, SalaryCents: salaryCents}
	for _, c := range categories {
		switch c.Section {
		case core.SectionFixed:
			s.Fixed.BudgetCents += c.BudgetCents
			s.Fixed.SpentCents += c.SpentCents
		case core.SectionVariable:
			s.Variable.BudgetCents += c.BudgetCents
			s.Variable.SpentCents += c.SpentCents
		case core.SectionMovements:
			s.Movements.BudgetCents += c.BudgetCents
			s.Movements.SpentCents += c.SpentCents
		}
	}
	s.BalanceCents = salaryCents - (s.Fixed.SpentCents + s.Variable.SpentCents + s.Movements.SpentCents)

	// Percentages are undefined with no salary; no alert is emitted then.
	if salaryCents > 0 {
		s.Alerts = appendAlert(s.Alerts, "Fixed Expenses", fixedShareLimit, s.Fixed.SpentCents, salaryCents)
		s.Alerts = appendAlert(s.Alerts, "Variable Expenses", variableShareLimit, s.Variable.SpentCents, salaryCents)
		s.Alerts = appendAlert(s.Alerts, "Movements", movementsShareLimit, s.Movements.SpentCents, salaryCents)
	}
	return s
}

// appendAlert emits an alert only when the bucket's share is strictly
// greater than the limit; hitting the limit exactly is compliant.
func appendAlert(alerts []core.Alert, bucket string, limit float64, spent, salary int64) []core.Alert {
	actual := float64(spent) / float64(salary)
	if actual > limit {
		alerts = append(alerts, core.Alert{
			Bucket:        bucket,
			LimitPercent:  limit * 100,
			ActualPercent: actual * 100,
		})
	}
	return alerts
}
