package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"financas/internal/services"
	"financas/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	imports := services.NewImportService(repo, nil)
	summaries := services.NewSummaryService(repo)
	t.Cleanup(summaries.Close)
	imports.OnChange(summaries.Invalidate)

	srv := NewServer(":0", imports, summaries)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

const importBody = `data,descricao,valor,categoria,subcategoria
05/03/2025,Salário,"5.000,00",Salário,
10/03/2025,Aluguel,"-2.000,00",Moradia,Aluguel
12/03/2025,Mercado,"-450,00",Alimentação,Supermercado
`

func TestImportAndSummaryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/import/csv", importBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}
	var report struct {
		Imported int `json:"imported"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Imported != 3 {
		t.Fatalf("imported = %d, want 3", report.Imported)
	}

	rec = doRequest(t, srv, http.MethodGet, "/summary?year=2025&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		Month       string `json:"month"`
		SalaryCents int64  `json:"salary_cents"`
		Fixed       struct {
			SpentCents int64 `json:"spent_cents"`
		} `json:"fixed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Month != "2025-03" {
		t.Fatalf("month = %q", summary.Month)
	}
	if summary.SalaryCents != 500000 {
		t.Fatalf("salary = %d", summary.SalaryCents)
	}
	if summary.Fixed.SpentCents != 200000 {
		t.Fatalf("fixed spent = %d", summary.Fixed.SpentCents)
	}
}

func TestImportRejectsUnreadable(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/import/csv", "linha única")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestSummaryRejectsBadMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/summary?year=2025&month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doRequest(t, srv, http.MethodPost, "/import/csv", importBody)

	rec := doRequest(t, srv, http.MethodGet, "/export/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "2025-03-10,Aluguel,Moradia,fixed,-2000.00") {
		t.Fatalf("export body missing rent row:\n%s", rec.Body.String())
	}
}

func TestPreferencesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"category":"Alimentação","subcategory":"Supermercado","tipo_custo":"fixed"}`
	rec := doRequest(t, srv, http.MethodPut, "/preferences", body)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/preferences", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var overrides []struct {
		Category string `json:"category"`
		CostType string `json:"tipo_custo"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &overrides); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(overrides) != 1 || overrides[0].CostType != "fixed" {
		t.Fatalf("overrides = %+v", overrides)
	}

	// Movement cost types are rejected at the boundary.
	bad := `{"category":"Investimentos","subcategory":"Aplicação","tipo_custo":"movement-expense"}`
	rec = doRequest(t, srv, http.MethodPut, "/preferences", bad)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad cost type status = %d, want 422", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/preferences?category=Alimentação&subcategory=Supermercado", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestBudgetsEndpointHybridPair(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"category_name":"Saúde","tipo_custo":"fixed","budget_cents":30000}`,
		`{"category_name":"Saúde","tipo_custo":"variable","budget_cents":20000}`,
	} {
		rec := doRequest(t, srv, http.MethodPut, "/budgets", body)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/budgets", "")
	var budgets []struct {
		CostType string `json:"tipo_custo"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &budgets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("budgets = %d, want 2", len(budgets))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/import/csv", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Fatalf("Allow = %q", allow)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}
