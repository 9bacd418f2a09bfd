package google

import (
	"context"
	"reflect"
	"testing"

	"financas/internal/core"

	ports "financas/internal/sheets"
)

func TestMirrorRowValues(t *testing.T) {
	entry := ports.MirrorEntry{
		ID:          42,
		Date:        core.NewDate(2025, 3, 10),
		Description: "Aluguel",
		Category:    "Moradia",
		Subcategory: "Aluguel",
		CostType:    core.CostFixed,
		AmountCents: -200000,
	}

	got := mirrorRowValues(entry)
	want := []any{"2025-03-10", "Aluguel", "Moradia", "Aluguel", "fixed", "-2000.00", int64(42)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("row = %v, want %v", got, want)
	}
}

func TestYearPrefixedName(t *testing.T) {
	cases := []struct {
		base string
		year int
		want string
	}{
		{"Transacoes", 2025, "2025 Transacoes"},
		{"2024 Transacoes", 2025, "2024 Transacoes"},
		{"  Transacoes  ", 2025, "2025 Transacoes"},
		{"", 2025, ""},
	}
	for _, tc := range cases {
		if got := yearPrefixedName(tc.base, tc.year); got != tc.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tc.base, tc.year, got, tc.want)
		}
	}
}

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
