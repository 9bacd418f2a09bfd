package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"financas/internal/core"
	"financas/internal/csvio"
	"financas/internal/engine"
)

// Upload size cap: bank exports are small, anything bigger is abuse.
const maxImportBytes = 10 << 20

// handleImportCSV ingests one CSV upload. 422 covers the two fatal parse
// outcomes; per-row discards come back in the report, not as errors.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		BadRequestError("could not read request body").Write(w)
		return
	}
	if len(body) > maxImportBytes {
		ErrorResponse(http.StatusRequestEntityTooLarge, "upload too large").Write(w)
		return
	}

	report, err := s.imports.ImportCSV(r.Context(), string(body))
	if err != nil {
		switch {
		case errors.Is(err, csvio.ErrUnreadable), errors.Is(err, csvio.ErrNoValidRows):
			UnprocessableEntityError(err.Error()).Write(w)
		default:
			slog.ErrorContext(r.Context(), "CSV import failed", "error", err)
			InternalServerError("import failed").Write(w)
		}
		return
	}

	NewResponse().Status(http.StatusCreated).JSON(toImportReportDTO(report)).Write(w)
}

// handleExportCSV streams the canonical CSV rendering of stored history.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	out, err := s.imports.ExportCSV(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
		InternalServerError("export failed").Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transacoes.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// handleSummary returns the full monthly summary: sections, categories,
// rollups, balance and 50/30/20 alerts.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	res, err := s.summaries.MonthlySummary(r.Context(), params.Year, params.Month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary computation failed",
			"error", err, "year", params.Year, "month", params.Month)
		InternalServerError("summary computation failed").Write(w)
		return
	}

	NewResponse().JSON(toSummaryDTO(res)).Write(w)
}

// handleMonthlyAggregates returns the full per-month expense series.
func (s *Server) handleMonthlyAggregates(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	res, err := s.currentResult(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Aggregate computation failed", "error", err)
		InternalServerError("aggregate computation failed").Write(w)
		return
	}

	out := make([]monthlyAggregateDTO, 0, len(res.Monthly))
	for _, a := range res.Monthly {
		out = append(out, monthlyAggregateDTO(a))
	}
	NewResponse().JSON(out).Write(w)
}

// handleWeeklyAggregates returns the ISO-week expense series.
func (s *Server) handleWeeklyAggregates(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	res, err := s.currentResult(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Aggregate computation failed", "error", err)
		InternalServerError("aggregate computation failed").Write(w)
		return
	}

	out := make([]weeklyAggregateDTO, 0, len(res.Weekly))
	for _, a := range res.Weekly {
		out = append(out, weeklyAggregateDTO(a))
	}
	NewResponse().JSON(out).Write(w)
}

// handlePreferences serves and mutates cost-type overrides.
func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		overrides, err := s.summaries.Overrides(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List overrides failed", "error", err)
			InternalServerError("could not list preferences").Write(w)
			return
		}
		out := make([]overrideDTO, 0, len(overrides))
		for _, o := range overrides {
			out = append(out, overrideDTO{
				Category:    o.Category,
				Subcategory: o.Subcategory,
				CostType:    string(o.CostType),
			})
		}
		NewResponse().JSON(out).Write(w)

	case http.MethodPut, http.MethodPost:
		var in overrideDTO
		if err := DecodeJSONBody(r, &in); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		o := core.PreferenceOverride{
			Category:    sanitizeInput(in.Category),
			Subcategory: sanitizeInput(in.Subcategory),
			CostType:    core.CostType(in.CostType),
		}
		if err := s.imports.SaveOverride(r.Context(), o); err != nil {
			if errors.Is(err, core.ErrEmptyCategory) || errors.Is(err, core.ErrInvalidCostType) {
				UnprocessableEntityError(err.Error()).Write(w)
				return
			}
			slog.ErrorContext(r.Context(), "Save override failed", "error", err)
			InternalServerError("could not save preference").Write(w)
			return
		}
		NewResponse().Status(http.StatusNoContent).Write(w)

	case http.MethodDelete:
		category := sanitizeInput(r.URL.Query().Get("category"))
		subcategory := sanitizeInput(r.URL.Query().Get("subcategory"))
		if category == "" {
			BadRequestError("category is required").Write(w)
			return
		}
		if err := s.imports.DeleteOverride(r.Context(), category, subcategory); err != nil {
			slog.ErrorContext(r.Context(), "Delete override failed", "error", err)
			InternalServerError("could not delete preference").Write(w)
			return
		}
		NewResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("GET, PUT, POST, DELETE").Write(w)
	}
}

// handleBudgets serves and mutates custom budgets. A category with one
// fixed and one variable row becomes hybrid.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		budgets, err := s.summaries.Budgets(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "List budgets failed", "error", err)
			InternalServerError("could not list budgets").Write(w)
			return
		}
		out := make([]budgetDTO, 0, len(budgets))
		for _, b := range budgets {
			out = append(out, budgetDTO{
				CategoryName: b.CategoryName,
				Subcategory:  b.Subcategory,
				CostType:     string(b.CostType),
				BudgetCents:  b.BudgetCents,
			})
		}
		NewResponse().JSON(out).Write(w)

	case http.MethodPut, http.MethodPost:
		var in budgetDTO
		if err := DecodeJSONBody(r, &in); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		b := core.CustomBudget{
			CategoryName: sanitizeInput(in.CategoryName),
			Subcategory:  sanitizeInput(in.Subcategory),
			CostType:     core.CostType(in.CostType),
			BudgetCents:  in.BudgetCents,
		}
		if err := s.imports.SaveBudget(r.Context(), b); err != nil {
			if errors.Is(err, core.ErrEmptyCategory) ||
				errors.Is(err, core.ErrInvalidCostType) ||
				errors.Is(err, core.ErrInvalidAmount) {
				UnprocessableEntityError(err.Error()).Write(w)
				return
			}
			slog.ErrorContext(r.Context(), "Save budget failed", "error", err)
			InternalServerError("could not save budget").Write(w)
			return
		}
		NewResponse().Status(http.StatusNoContent).Write(w)

	case http.MethodDelete:
		category := sanitizeInput(r.URL.Query().Get("category"))
		costType := core.CostType(sanitizeInput(r.URL.Query().Get("tipo_custo")))
		if category == "" {
			BadRequestError("category is required").Write(w)
			return
		}
		if costType != core.CostFixed && costType != core.CostVariable {
			BadRequestError("tipo_custo must be fixed or variable").Write(w)
			return
		}
		if err := s.imports.DeleteBudget(r.Context(), category, costType); err != nil {
			slog.ErrorContext(r.Context(), "Delete budget failed", "error", err)
			InternalServerError("could not delete budget").Write(w)
			return
		}
		NewResponse().Status(http.StatusNoContent).Write(w)

	default:
		MethodNotAllowedError("GET, PUT, POST, DELETE").Write(w)
	}
}

// currentResult computes the engine result for the requested (or current)
// month; the aggregate series inside it always cover full history.
func (s *Server) currentResult(r *http.Request) (*engine.Result, error) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		now := time.Now()
		params = MonthParams{Year: now.Year(), Month: int(now.Month())}
	}
	return s.summaries.MonthlySummary(r.Context(), params.Year, params.Month)
}
