package csvio

import (
	"errors"
	"strings"
	"testing"

	"financas/internal/core"
)

func TestParseCommaSeparated(t *testing.T) {
	input := strings.Join([]string{
		"data,descricao,valor,categoria,subcategoria",
		"10/03/2025,Supermercado Pão,\"-1.234,56\",Alimentação,Supermercado",
		"2025-03-11,Aluguel março,-150000,Moradia,Aluguel",
	}, "\n")

	res, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(res.Drafts))
	}
	first := res.Drafts[0]
	if first.AmountCents != -123456 {
		t.Fatalf("amount = %d, want -123456", first.AmountCents)
	}
	if first.Date != core.NewDate(2025, 3, 10) {
		t.Fatalf("date = %v", first.Date)
	}
	if first.Category != "Alimentação" || first.Subcategory != "Supermercado" {
		t.Fatalf("category hint = %q/%q", first.Category, first.Subcategory)
	}
	if res.Drafts[1].Date != core.NewDate(2025, 3, 11) {
		t.Fatalf("ISO date = %v", res.Drafts[1].Date)
	}
}

func TestParseTabAutodetect(t *testing.T) {
	input := "Data\tDescrição\tValor (R$)\n" +
		"10/03/2025\tFarmácia, filial centro\t-89,90\n"

	res, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(res.Drafts))
	}
	d := res.Drafts[0]
	// The unquoted comma stays inside the field under a tab separator.
	if d.Description != "Farmácia, filial centro" {
		t.Fatalf("description = %q", d.Description)
	}
	if d.AmountCents != -8990 {
		t.Fatalf("amount = %d, want -8990", d.AmountCents)
	}
}

func TestParseSkipsPreamble(t *testing.T) {
	input := strings.Join([]string{
		"Extrato da conta 1234-5",
		"Período: 01/03/2025 a 31/03/2025",
		"data,historico,credito,debito",
		"05/03/2025,Salário,5000,",
		"06/03/2025,Mercado,,\"250,75\"",
	}, "\n")

	res, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(res.Drafts))
	}
	if res.Drafts[0].AmountCents != 500000 {
		t.Fatalf("credit amount = %d, want 500000", res.Drafts[0].AmountCents)
	}
	if res.Drafts[1].AmountCents != -25075 {
		t.Fatalf("debit amount = %d, want -25075", res.Drafts[1].AmountCents)
	}
}

func TestParseDiagnostics(t *testing.T) {
	input := strings.Join([]string{
		"data,descricao,valor",
		",,100",
		"10/03/2025,Padaria,abc",
		"10/03/2025,Padaria,\"-15,00\"",
	}, "\n")

	res, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Drafts) != 1 {
		t.Fatalf("drafts = %d, want 1", len(res.Drafts))
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %d, want 2", len(res.Diagnostics))
	}
	if res.Diagnostics[0].Line != 2 || res.Diagnostics[1].Line != 3 {
		t.Fatalf("diagnostic lines = %d, %d", res.Diagnostics[0].Line, res.Diagnostics[1].Line)
	}
}

func TestParseUnreadable(t *testing.T) {
	if _, err := Parse("só uma linha"); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("single line: err = %v, want ErrUnreadable", err)
	}
	noHeader := "alpha,beta\ngamma,delta\n"
	if _, err := Parse(noHeader); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("no header: err = %v, want ErrUnreadable", err)
	}
}

func TestParseNoValidRows(t *testing.T) {
	input := strings.Join([]string{
		"data,descricao,valor",
		",,10",
		",,20",
	}, "\n")

	_, err := Parse(input)
	if !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("err = %v, want ErrNoValidRows", err)
	}
	var nv *NoValidRowsError
	if !errors.As(err, &nv) || nv.Skipped != 2 {
		t.Fatalf("skipped count not reported: %v", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	rows := []ExportRow{
		{Date: core.NewDate(2025, 3, 10), Description: "Mercado, centro", Category: "Alimentação", Type: "variable", AmountCents: -123456},
		{Date: core.NewDate(2025, 3, 12), Description: "Salário", Category: "Salário", Type: "movement-income", AmountCents: 500000},
	}

	out := Export(rows)
	res, err := Parse(out)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if len(res.Drafts) != len(rows) {
		t.Fatalf("drafts = %d, want %d", len(res.Drafts), len(rows))
	}
	for i, d := range res.Drafts {
		want := rows[i]
		if d.Date != want.Date || d.AmountCents != want.AmountCents {
			t.Fatalf("row %d: date/amount %v %d, want %v %d", i, d.Date, d.AmountCents, want.Date, want.AmountCents)
		}
		if d.Description != want.Description || d.Category != want.Category {
			t.Fatalf("row %d: %q/%q, want %q/%q", i, d.Description, d.Category, want.Description, want.Category)
		}
	}
}

func TestDraftTransaction(t *testing.T) {
	d := Draft{
		Date:        core.NewDate(2025, 3, 10),
		AmountCents: -5000,
		Description: "Padaria",
		Category:    " Alimentação ",
	}
	tx := d.Transaction()
	if tx.CategoryName() != "Alimentação" {
		t.Fatalf("category = %q", tx.CategoryName())
	}
	if tx.Subcategory != nil {
		t.Fatalf("subcategory should be nil")
	}
	if !tx.Amount.IsExpense() {
		t.Fatalf("negative amount should be an expense")
	}
}
