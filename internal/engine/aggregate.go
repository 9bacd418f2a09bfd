package engine

import (
	"sort"

	"financas/internal/core"
	"financas/internal/rules"
)

// bucketKey identifies one (category, subcategory) spend bucket. General
// transactions aggregate under an empty subcategory so the hybrid split can
// still see them separately from any named subcategory.
type bucketKey struct {
	category    string
	subcategory string
}

// aggregates is the full bucketing of one classification pass.
type aggregates struct {
	monthly map[bucketKey]map[string]*periodTotal // key -> month -> total
	weekly  map[bucketKey]map[string]*periodTotal // key -> ISO week -> total
}

type periodTotal struct {
	cents int64
	count int
}

// aggregateExpenses buckets every classified expense transaction by
// calendar month and ISO week. Expense means a debit amount on anything
// that is not movement income; movement-income transactions are handled by
// the salary aggregation instead.
func aggregateExpenses(classified []Classified) *aggregates {
	agg := &aggregates{
		monthly: make(map[bucketKey]map[string]*periodTotal),
		weekly:  make(map[bucketKey]map[string]*periodTotal),
	}
	for _, c := range classified {
		if c.CostType == core.CostMovementIncome {
			continue
		}
		if !c.Tx.Amount.IsExpense() {
			continue
		}
		key := keyFor(c)
		add(agg.monthly, key, c.Tx.Date.MonthKey(), c.Tx.Amount.Abs())
		add(agg.weekly, key, c.Tx.Date.ISOWeekKey(), c.Tx.Amount.Abs())
	}
	return agg
}

func keyFor(c Classified) bucketKey {
	key := bucketKey{category: c.Rule.Category}
	if !c.Tx.IsGeneral() {
		key.subcategory = c.Rule.Subcategory
	}
	return key
}

func add(m map[bucketKey]map[string]*periodTotal, key bucketKey, period string, cents int64) {
	byPeriod := m[key]
	if byPeriod == nil {
		byPeriod = make(map[string]*periodTotal)
		m[key] = byPeriod
	}
	t := byPeriod[period]
	if t == nil {
		t = &periodTotal{}
		byPeriod[period] = t
	}
	t.cents += cents
	t.count++
}

// suggestedBudget is the historical monthly average over months with
// nonzero spend. A subcategory active in only 3 of 12 months averages over
// 3, not 12. Rounding is half up.
func (a *aggregates) suggestedBudget(key bucketKey) int64 {
	byMonth := a.monthly[key]
	var sum int64
	var months int64
	for _, t := range byMonth {
		if t.cents == 0 {
			continue
		}
		sum += t.cents
		months++
	}
	if months == 0 {
		return 0
	}
	return (sum + months/2) / months
}

// spentIn returns the bucket total for one month key.
func (a *aggregates) spentIn(key bucketKey, month string) (int64, int) {
	if t := a.monthly[key][month]; t != nil {
		return t.cents, t.count
	}
	return 0, 0
}

// monthlySeries flattens the monthly buckets, sorted for stable output.
func (a *aggregates) monthlySeries() []core.MonthlyAggregate {
	out := make([]core.MonthlyAggregate, 0, len(a.monthly))
	for key, byMonth := range a.monthly {
		for month, t := range byMonth {
			out = append(out, core.MonthlyAggregate{
				Category:    key.category,
				Subcategory: key.subcategory,
				Month:       month,
				TotalCents:  t.cents,
				Count:       t.count,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Subcategory < out[j].Subcategory
	})
	return out
}

// weeklySeries flattens the ISO-week buckets, sorted for stable output.
func (a *aggregates) weeklySeries() []core.WeeklyAggregate {
	out := make([]core.WeeklyAggregate, 0, len(a.weekly))
	for key, byWeek := range a.weekly {
		for week, t := range byWeek {
			out = append(out, core.WeeklyAggregate{
				Category:    key.category,
				Subcategory: key.subcategory,
				Week:        week,
				TotalCents:  t.cents,
				Count:       t.count,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Subcategory < out[j].Subcategory
	})
	return out
}

// salaryFor sums movement-income credits for the selected month, excluding
// received transfers per the category/description heuristic.
func salaryFor(classified []Classified, month string) int64 {
	var total int64
	for _, c := range classified {
		if c.CostType != core.CostMovementIncome {
			continue
		}
		if c.Tx.Amount.IsExpense() {
			continue
		}
		if c.Tx.Date.MonthKey() != month {
			continue
		}
		if rules.IsTransferReceived(c.Rule.Category, c.Tx.Description) {
			continue
		}
		total += c.Tx.Amount.Cents
	}
	return total
}
