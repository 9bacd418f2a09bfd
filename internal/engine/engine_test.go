package engine

import (
	"reflect"
	"testing"

	"financas/internal/core"
	"financas/internal/rules"
)

func txOn(year, month, day int, cat, sub string, cents int64) core.Transaction {
	t := core.Transaction{
		Date:   core.NewDate(year, month, day),
		Amount: core.Money{Cents: cents},
	}
	if cat != "" {
		t.Category = core.StrPtr(cat)
	}
	if sub != "" {
		t.Subcategory = core.StrPtr(sub)
	}
	return t
}

func findCategory(t *testing.T, categories []core.CategorySummary, section core.Section, name string) core.CategorySummary {
	t.Helper()
	for _, c := range categories {
		if c.Section == section && c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s entry for %q in %+v", section, name, categories)
	return core.CategorySummary{}
}

func TestComputeSummaryIdempotent(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 1, "Moradia", "Aluguel", -150000),
			txOn(2025, 3, 5, "Alimentação", "Supermercado", -40000),
			txOn(2025, 3, 7, "Salário", "Pagamento", 500000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	a, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("pipeline is not idempotent:\nfirst  %+v\nsecond %+v", a, b)
	}
}

func TestHybridSplitExactHalf(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			// One general expense of R$ 100,00 and nothing else.
			txOn(2025, 3, 10, "Transporte", "", -10000),
		},
		Rules: rules.Default(),
		CustomBudgets: []core.CustomBudget{
			{CategoryName: "Transporte", BudgetCents: 30000, CostType: core.CostFixed},
			{CategoryName: "Transporte", BudgetCents: 20000, CostType: core.CostVariable},
		},
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	fixed := findCategory(t, res.Categories, core.SectionFixed, "Transporte")
	variable := findCategory(t, res.Categories, core.SectionVariable, "Transporte")

	if fixed.SpentCents != 5000 {
		t.Fatalf("fixed half = %d, want exactly 5000", fixed.SpentCents)
	}
	if variable.SpentCents != 5000 {
		t.Fatalf("variable half = %d, want exactly 5000", variable.SpentCents)
	}
	if !fixed.Hybrid || !variable.Hybrid {
		t.Fatalf("entries not marked hybrid: %+v %+v", fixed, variable)
	}
	// The two budgets stay independently sourced, never merged.
	if fixed.BudgetCents != 30000 || variable.BudgetCents != 20000 {
		t.Fatalf("hybrid budgets merged: fixed=%d variable=%d", fixed.BudgetCents, variable.BudgetCents)
	}
}

func TestHybridSplitOddCent(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 10, "Transporte", "", -10001),
		},
		Rules: rules.Default(),
		CustomBudgets: []core.CustomBudget{
			{CategoryName: "Transporte", BudgetCents: 1, CostType: core.CostFixed},
			{CategoryName: "Transporte", BudgetCents: 1, CostType: core.CostVariable},
		},
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	fixed := findCategory(t, res.Categories, core.SectionFixed, "Transporte")
	variable := findCategory(t, res.Categories, core.SectionVariable, "Transporte")
	if fixed.SpentCents+variable.SpentCents != 10001 {
		t.Fatalf("halves do not sum: %d + %d", fixed.SpentCents, variable.SpentCents)
	}
	if fixed.SpentCents != 5000 || variable.SpentCents != 5001 {
		t.Fatalf("odd cent policy changed: fixed=%d variable=%d", fixed.SpentCents, variable.SpentCents)
	}
}

func TestHybridKeepsBothEntriesWithOneSidedSpend(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			// All spend lands in Aluguel, which resolves fixed. The variable
			// entry still exists, carrying its own budget with zero spend.
			txOn(2025, 3, 10, "Moradia", "Aluguel", -150000),
		},
		Rules: rules.Default(),
		CustomBudgets: []core.CustomBudget{
			{CategoryName: "Moradia", BudgetCents: 30000, CostType: core.CostFixed},
			{CategoryName: "Moradia", BudgetCents: 20000, CostType: core.CostVariable},
		},
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	fixed := findCategory(t, res.Categories, core.SectionFixed, "Moradia")
	variable := findCategory(t, res.Categories, core.SectionVariable, "Moradia")

	if fixed.SpentCents != 150000 || fixed.BudgetCents != 30000 {
		t.Fatalf("fixed entry = spent %d budget %d", fixed.SpentCents, fixed.BudgetCents)
	}
	if variable.SpentCents != 0 {
		t.Fatalf("variable spent = %d, want 0", variable.SpentCents)
	}
	if variable.BudgetCents != 20000 {
		t.Fatalf("variable budget = %d, want 20000", variable.BudgetCents)
	}
	if res.Summary.Variable.BudgetCents != 20000 {
		t.Fatalf("variable bucket budget = %d, want 20000", res.Summary.Variable.BudgetCents)
	}
}

func TestNonHybridGeneralGoesToDefaultSection(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			// Moradia's first rule (Aluguel) is fixed, so the whole general
			// amount files under Fixed.
			txOn(2025, 3, 10, "Moradia", "", -80000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	fixed := findCategory(t, res.Categories, core.SectionFixed, "Moradia")
	if fixed.SpentCents != 80000 {
		t.Fatalf("fixed spent = %d, want 80000", fixed.SpentCents)
	}
	for _, c := range res.Categories {
		if c.Section == core.SectionVariable && c.Name == "Moradia" && c.SpentCents != 0 {
			t.Fatalf("variable entry received general spend: %+v", c)
		}
	}
}

func TestSuggestedBudgetSkipsZeroMonths(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			// Months 1 and 3 have no spend at all; 2 and 4 have 200 and 400.
			txOn(2025, 2, 10, "Lazer", "Cinema", -20000),
			txOn(2025, 4, 10, "Lazer", "Cinema", -40000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 4,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	variable := findCategory(t, res.Categories, core.SectionVariable, "Lazer")
	var cinema *core.SubcategorySummary
	for i := range variable.Subcategories {
		if variable.Subcategories[i].Name == "Cinema" {
			cinema = &variable.Subcategories[i]
		}
	}
	if cinema == nil {
		t.Fatalf("no Cinema subcategory in %+v", variable)
	}
	// Average over the 2 active months: (200+400)/2 = 300, not /4.
	if cinema.SuggestedBudgetCents != 30000 {
		t.Fatalf("suggested = %d, want 30000", cinema.SuggestedBudgetCents)
	}
}

func TestFiftyThirtyTwentyBoundary(t *testing.T) {
	base := Inputs{
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}

	run := func(fixedCents int64) *Result {
		in := base
		in.Transactions = []core.Transaction{
			txOn(2025, 3, 1, "Salário", "Pagamento", 500000),
			txOn(2025, 3, 2, "Moradia", "Aluguel", -fixedCents),
		}
		res, err := ComputeSummary(in)
		if err != nil {
			t.Fatalf("ComputeSummary: %v", err)
		}
		return res
	}

	// 52% of salary on fixed: alert.
	res := run(260000)
	if len(res.Summary.Alerts) != 1 {
		t.Fatalf("alerts = %+v, want exactly one", res.Summary.Alerts)
	}
	a := res.Summary.Alerts[0]
	if a.Bucket != "Fixed Expenses" || a.LimitPercent != 50 {
		t.Fatalf("alert = %+v", a)
	}
	if a.ActualPercent != 52 {
		t.Fatalf("actual percent = %v, want 52", a.ActualPercent)
	}

	// Exactly 50%: strictly-greater check, no alert.
	res = run(250000)
	if len(res.Summary.Alerts) != 0 {
		t.Fatalf("alerts at exact limit = %+v, want none", res.Summary.Alerts)
	}
}

func TestNoAlertsWithoutSalary(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 2, "Moradia", "Aluguel", -260000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if res.Summary.SalaryCents != 0 {
		t.Fatalf("salary = %d, want 0", res.Summary.SalaryCents)
	}
	if len(res.Summary.Alerts) != 0 {
		t.Fatalf("alerts with zero salary = %+v, want none", res.Summary.Alerts)
	}
}

func TestUncategorizedRetention(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 1, "Moradia", "Aluguel", -150000),
			txOn(2025, 3, 2, "Foguetes", "", -99900),
			txOn(2025, 3, 3, "", "", -100),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if res.Classified+len(res.Uncategorized) != len(in.Transactions) {
		t.Fatalf("classified %d + uncategorized %d != total %d",
			res.Classified, len(res.Uncategorized), len(in.Transactions))
	}
	if len(res.Uncategorized) != 2 {
		t.Fatalf("uncategorized = %d, want 2", len(res.Uncategorized))
	}
	// Uncategorized spend stays out of every category total.
	var total int64
	for _, c := range res.Categories {
		total += c.SpentCents
	}
	if total != 150000 {
		t.Fatalf("category totals = %d, want 150000", total)
	}
}

func TestSalaryExcludesTransfersReceived(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 1, "Salário", "Pagamento", 500000),
			func() core.Transaction {
				t := txOn(2025, 3, 2, "Receitas", "Reembolso", 30000)
				t.Description = "PIX recebido de Maria"
				return t
			}(),
			txOn(2025, 3, 3, "Receitas", "Rendimentos", 10000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	// Salary keeps the paycheck and the yield, not the received pix.
	if res.Summary.SalaryCents != 510000 {
		t.Fatalf("salary = %d, want 510000", res.Summary.SalaryCents)
	}
}

func TestConservationAcrossCategories(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 1, "Moradia", "Aluguel", -150000),
			txOn(2025, 3, 2, "Moradia", "Energia", -20000),
			txOn(2025, 3, 3, "Moradia", "", -5000),
			txOn(2025, 3, 4, "Alimentação", "Supermercado", -40000),
			txOn(2025, 3, 5, "Transporte", "", -10001),
			txOn(2025, 3, 6, "Investimentos", "Aplicação", -100000),
		},
		Rules: rules.Default(),
		CustomBudgets: []core.CustomBudget{
			{CategoryName: "Transporte", BudgetCents: 30000, CostType: core.CostFixed},
			{CategoryName: "Transporte", BudgetCents: 20000, CostType: core.CostVariable},
		},
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	for _, c := range res.Categories {
		var parts int64
		for _, s := range c.Subcategories {
			parts += s.SpentCents
		}
		if parts != c.SpentCents {
			t.Fatalf("%s/%s: parts %d != whole %d", c.Section, c.Name, parts, c.SpentCents)
		}
	}
	// Section budgets reported in the summary equal the per-category sums.
	var fixedBudget, variableBudget, movementsBudget int64
	for _, c := range res.Categories {
		switch c.Section {
		case core.SectionFixed:
			fixedBudget += c.BudgetCents
		case core.SectionVariable:
			variableBudget += c.BudgetCents
		case core.SectionMovements:
			movementsBudget += c.BudgetCents
		}
	}
	if res.Summary.Fixed.BudgetCents != fixedBudget ||
		res.Summary.Variable.BudgetCents != variableBudget ||
		res.Summary.Movements.BudgetCents != movementsBudget {
		t.Fatalf("summary budgets diverge from category sums: %+v", res.Summary)
	}
}

func TestZeroCustomBudgetFallsBackToSuggested(t *testing.T) {
	// A budget row explicitly set to zero behaves like an absent row: the
	// category budget falls back to the suggested-budget average. "Zero on
	// purpose" and "unset" are not distinguishable here.
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 2, 10, "Lazer", "Cinema", -20000),
			txOn(2025, 3, 10, "Lazer", "Cinema", -20000),
		},
		Rules: rules.Default(),
		CustomBudgets: []core.CustomBudget{
			{CategoryName: "Lazer", BudgetCents: 0, CostType: core.CostVariable},
		},
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	variable := findCategory(t, res.Categories, core.SectionVariable, "Lazer")
	if variable.BudgetCents != 20000 {
		t.Fatalf("budget = %d, want suggested fallback 20000", variable.BudgetCents)
	}
}

func TestBalance(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			txOn(2025, 3, 1, "Salário", "Pagamento", 500000),
			txOn(2025, 3, 2, "Moradia", "Aluguel", -150000),
			txOn(2025, 3, 3, "Alimentação", "Supermercado", -40000),
			txOn(2025, 3, 4, "Investimentos", "Aplicação", -100000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	want := int64(500000 - 150000 - 40000 - 100000)
	if res.Summary.BalanceCents != want {
		t.Fatalf("balance = %d, want %d", res.Summary.BalanceCents, want)
	}
	if res.Summary.Movements.SpentCents != 100000 {
		t.Fatalf("movements spent = %d, want 100000", res.Summary.Movements.SpentCents)
	}
}

func TestWeeklyAggregationMirrorsMonthly(t *testing.T) {
	in := Inputs{
		Transactions: []core.Transaction{
			// 2025-03-03 is Monday of ISO week 10; 2025-03-10 of week 11.
			txOn(2025, 3, 3, "Alimentação", "Supermercado", -10000),
			txOn(2025, 3, 10, "Alimentação", "Supermercado", -20000),
		},
		Rules: rules.Default(),
		Year:  2025,
		Month: 3,
	}
	res, err := ComputeSummary(in)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if len(res.Weekly) != 2 {
		t.Fatalf("weekly buckets = %+v, want 2", res.Weekly)
	}
	if res.Weekly[0].Week != "2025-W10" || res.Weekly[0].TotalCents != 10000 {
		t.Fatalf("week 10 bucket = %+v", res.Weekly[0])
	}
	if res.Weekly[1].Week != "2025-W11" || res.Weekly[1].TotalCents != 20000 {
		t.Fatalf("week 11 bucket = %+v", res.Weekly[1])
	}
	var monthlyTotal int64
	for _, m := range res.Monthly {
		monthlyTotal += m.TotalCents
	}
	if monthlyTotal != 30000 {
		t.Fatalf("monthly total = %d, want 30000", monthlyTotal)
	}
}
