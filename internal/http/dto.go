// This file maps engine and core types onto the wire representation. Core
// stays free of serialization concerns.
package http

import (
	"financas/internal/core"
	"financas/internal/engine"
	"financas/internal/services"
)

type bucketTotalsDTO struct {
	BudgetCents int64 `json:"budget_cents"`
	SpentCents  int64 `json:"spent_cents"`
}

type alertDTO struct {
	Bucket        string  `json:"bucket"`
	LimitPercent  float64 `json:"limit_percent"`
	ActualPercent float64 `json:"actual_percent"`
}

type subcategoryDTO struct {
	Name                 string `json:"name"`
	SpentCents           int64  `json:"spent_cents"`
	SuggestedBudgetCents int64  `json:"suggested_budget_cents"`
}

type categoryDTO struct {
	Section       string           `json:"section"`
	Name          string           `json:"name"`
	Hybrid        bool             `json:"hybrid"`
	SpentCents    int64            `json:"spent_cents"`
	BudgetCents   int64            `json:"budget_cents"`
	Status        string           `json:"status"`
	Subcategories []subcategoryDTO `json:"subcategories"`
}

type summaryDTO struct {
	Month              string          `json:"month"`
	SalaryCents        int64           `json:"salary_cents"`
	Fixed              bucketTotalsDTO `json:"fixed"`
	Variable           bucketTotalsDTO `json:"variable"`
	Movements          bucketTotalsDTO `json:"movements"`
	BalanceCents       int64           `json:"balance_cents"`
	Alerts             []alertDTO      `json:"alerts"`
	Categories         []categoryDTO   `json:"categories"`
	ClassifiedCount    int             `json:"classified_count"`
	UncategorizedCount int             `json:"uncategorized_count"`
}

type monthlyAggregateDTO struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Month       string `json:"month"`
	TotalCents  int64  `json:"total_cents"`
	Count       int    `json:"count"`
}

type weeklyAggregateDTO struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Week        string `json:"week"`
	TotalCents  int64  `json:"total_cents"`
	Count       int    `json:"count"`
}

type overrideDTO struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	CostType    string `json:"tipo_custo"`
}

type budgetDTO struct {
	CategoryName string `json:"category_name"`
	Subcategory  string `json:"subcategory,omitempty"`
	CostType     string `json:"tipo_custo"`
	BudgetCents  int64  `json:"budget_cents"`
}

type importReportDTO struct {
	Imported int             `json:"imported"`
	Skipped  []skippedRowDTO `json:"skipped"`
}

type skippedRowDTO struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func toSummaryDTO(res *engine.Result) summaryDTO {
	s := res.Summary
	dto := summaryDTO{
		Month:              s.Month,
		SalaryCents:        s.SalaryCents,
		Fixed:              bucketTotalsDTO(s.Fixed),
		Variable:           bucketTotalsDTO(s.Variable),
		Movements:          bucketTotalsDTO(s.Movements),
		BalanceCents:       s.BalanceCents,
		Alerts:             make([]alertDTO, 0, len(s.Alerts)),
		Categories:         make([]categoryDTO, 0, len(res.Categories)),
		ClassifiedCount:    res.Classified,
		UncategorizedCount: len(res.Uncategorized),
	}
	for _, a := range s.Alerts {
		dto.Alerts = append(dto.Alerts, alertDTO(a))
	}
	for _, c := range res.Categories {
		dto.Categories = append(dto.Categories, toCategoryDTO(c))
	}
	return dto
}

func toCategoryDTO(c core.CategorySummary) categoryDTO {
	dto := categoryDTO{
		Section:       string(c.Section),
		Name:          c.Name,
		Hybrid:        c.Hybrid,
		SpentCents:    c.SpentCents,
		BudgetCents:   c.BudgetCents,
		Status:        string(c.Status),
		Subcategories: make([]subcategoryDTO, 0, len(c.Subcategories)),
	}
	for _, s := range c.Subcategories {
		dto.Subcategories = append(dto.Subcategories, subcategoryDTO(s))
	}
	return dto
}

func toImportReportDTO(report *services.ImportReport) importReportDTO {
	dto := importReportDTO{
		Imported: report.Imported,
		Skipped:  make([]skippedRowDTO, 0, len(report.Skipped)),
	}
	for _, d := range report.Skipped {
		dto.Skipped = append(dto.Skipped, skippedRowDTO{Line: d.Line, Reason: d.Reason})
	}
	return dto
}
