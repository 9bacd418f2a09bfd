// Package csvio turns raw delimited text into transaction drafts and back.
// It is the import/export boundary of the engine: detection heuristics live
// here, classification does not.
package csvio

import (
	"errors"
	"fmt"
	"strings"

	"financas/internal/core"
)

var (
	// ErrUnreadable marks input that is structurally not a CSV at all
	// (fewer than 2 lines). Fatal to the import.
	ErrUnreadable = errors.New("csv is unreadable")

	// ErrNoValidRows marks a well-formed file that produced zero usable
	// rows. Fatal to the import; nothing is partially applied.
	ErrNoValidRows = errors.New("csv has no valid rows")
)

// NoValidRowsError carries the skipped-row count for the error message.
type NoValidRowsError struct {
	Skipped int
}

func (e *NoValidRowsError) Error() string {
	return fmt.Sprintf("no valid rows in import (%d rows skipped)", e.Skipped)
}

func (e *NoValidRowsError) Unwrap() error { return ErrNoValidRows }

// RowDiagnostic reports one discarded data row. Ambiguous rows are never
// silently dropped; each discard carries its line number and reason.
type RowDiagnostic struct {
	Line   int
	Reason string
}

// Draft is a loosely-typed transaction produced by normalization, before
// classification. Category and Subcategory are hints copied from the file.
type Draft struct {
	Line        int
	Date        core.Date
	AmountCents int64
	Description string
	Merchant    string
	Category    string
	Subcategory string
}

// Result pairs the accepted drafts with the diagnostics of discarded rows.
type Result struct {
	Drafts      []Draft
	Diagnostics []RowDiagnostic
}

// canonical field names the header aliases map onto.
const (
	fieldDate        = "date"
	fieldDescription = "description"
	fieldAmount      = "amount"
	fieldCredit      = "credit"
	fieldDebit       = "debit"
	fieldMerchant    = "merchant"
	fieldCategory    = "category"
	fieldSubcategory = "subcategory"
)

// headerAliases maps normalized header cells to canonical fields, covering
// pt-BR and English column names.
var headerAliases = map[string]string{
	"data":          fieldDate,
	"date":          fieldDate,
	"descricao":     fieldDescription,
	"description":   fieldDescription,
	"historico":     fieldDescription,
	"lancamento":    fieldDescription,
	"valor":         fieldAmount,
	"amount":        fieldAmount,
	"valor_r":       fieldAmount,
	"valor_rs":      fieldAmount,
	"credito":       fieldCredit,
	"credit":        fieldCredit,
	"debito":        fieldDebit,
	"debit":         fieldDebit,
	"estabelecimento": fieldMerchant,
	"merchant":        fieldMerchant,
	"favorecido":      fieldMerchant,
	"categoria":       fieldCategory,
	"category":        fieldCategory,
	"subcategoria":    fieldSubcategory,
	"subcategory":     fieldSubcategory,
	"tipo":            "", // recognized but unmapped; avoids a diagnostic
}

// headerKeywords drive header-row detection: the line with the most hits
// (at least 2) within the first 10 lines wins.
var headerKeywords = []string{
	"data", "date",
	"descricao", "description", "historico", "lancamento",
	"valor", "amount",
	"credito", "credit",
	"debito", "debit",
}

const headerScanWindow = 10

// Parse normalizes raw CSV text into transaction drafts.
//
// The field separator is a tab when the first line contains one, otherwise a
// comma. Lines before the detected header row are ignored. A data row is
// kept only if it yields a non-empty date or description; everything else is
// reported in the diagnostics. Zero usable rows fail the whole import.
func Parse(text string) (*Result, error) {
	lines := splitLines(text)
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: %d line(s)", ErrUnreadable, len(lines))
	}

	sep := detectSeparator(lines[0])
	headerIdx, header := detectHeader(lines, sep)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row found in first %d lines", ErrUnreadable, headerScanWindow)
	}

	fields := mapHeader(header)

	res := &Result{}
	for i := headerIdx + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitQuoted(line, sep)
		draft, diag := buildDraft(i+1, cells, fields)
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, *diag)
			continue
		}
		res.Drafts = append(res.Drafts, draft)
	}

	if len(res.Drafts) == 0 {
		return nil, &NoValidRowsError{Skipped: len(res.Diagnostics)}
	}
	return res, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	out := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// detectSeparator prefers a tab when the first line carries one, even if
// later lines also contain commas inside unquoted text.
func detectSeparator(firstLine string) rune {
	if strings.ContainsRune(firstLine, '\t') {
		return '\t'
	}
	return ','
}

// detectHeader scans the first lines for the row with the highest keyword
// count. Returns -1 when no line reaches two hits.
func detectHeader(lines []string, sep rune) (int, []string) {
	bestIdx := -1
	bestHits := 0
	var bestCells []string

	limit := len(lines)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}
	for i := 0; i < limit; i++ {
		cells := splitQuoted(lines[i], sep)
		hits := 0
		for _, c := range cells {
			key := normalizeHeaderCell(c)
			for _, kw := range headerKeywords {
				if key == kw {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			bestHits = hits
			bestIdx = i
			bestCells = cells
		}
	}
	if bestHits < 2 {
		return -1, nil
	}
	return bestIdx, bestCells
}

// splitQuoted splits a line on sep, quote-aware: a double quote toggles the
// inside-quotes flag and the separator only breaks fields while outside.
// This resolves decimal commas inside quoted amounts.
func splitQuoted(line string, sep rune) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields
}

// mapHeader resolves each header cell to a canonical field; unknown cells
// map to their column index being ignored.
func mapHeader(cells []string) map[int]string {
	fields := make(map[int]string, len(cells))
	for i, c := range cells {
		key := normalizeHeaderCell(c)
		if canonical, ok := headerAliases[key]; ok && canonical != "" {
			if _, taken := reverseLookup(fields, canonical); !taken {
				fields[i] = canonical
			}
		}
	}
	return fields
}

func reverseLookup(fields map[int]string, canonical string) (int, bool) {
	for i, f := range fields {
		if f == canonical {
			return i, true
		}
	}
	return 0, false
}

// normalizeHeaderCell lowercases, strips diacritics and currency symbols,
// drops parentheses and collapses whitespace to underscores, producing the
// canonical key consulted against the alias table.
func normalizeHeaderCell(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripDiacritics(s)
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '$' || r == '"':
			// dropped
		case r == ' ' || r == '\t' || r == '/':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.Trim(b.String(), "_")
}

var diacriticFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ã': 'a', 'â': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'õ': 'o', 'ô': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n',
}

func stripDiacritics(s string) string {
	var b strings.Builder
	for _, r := range s {
		if folded, ok := diacriticFold[r]; ok {
			b.WriteRune(folded)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// buildDraft maps one data row through the header fields. The row is kept
// when it yields a non-empty date or description.
func buildDraft(line int, cells []string, fields map[int]string) (Draft, *RowDiagnostic) {
	d := Draft{Line: line}
	var rawDate, rawAmount, rawCredit, rawDebit string
	for i, c := range cells {
		switch fields[i] {
		case fieldDate:
			rawDate = c
		case fieldDescription:
			d.Description = c
		case fieldAmount:
			rawAmount = c
		case fieldCredit:
			rawCredit = c
		case fieldDebit:
			rawDebit = c
		case fieldMerchant:
			d.Merchant = c
		case fieldCategory:
			d.Category = c
		case fieldSubcategory:
			d.Subcategory = c
		}
	}

	if strings.TrimSpace(rawDate) == "" && strings.TrimSpace(d.Description) == "" {
		return Draft{}, &RowDiagnostic{Line: line, Reason: "no date and no description"}
	}

	if rawDate != "" {
		date, err := parseDate(rawDate)
		if err != nil {
			return Draft{}, &RowDiagnostic{Line: line, Reason: fmt.Sprintf("bad date %q", rawDate)}
		}
		d.Date = date
	}

	cents, err := resolveAmount(rawAmount, rawCredit, rawDebit)
	if err != nil {
		return Draft{}, &RowDiagnostic{Line: line, Reason: err.Error()}
	}
	d.AmountCents = cents

	return d, nil
}

// resolveAmount prefers a signed amount column; otherwise credit minus
// debit, where a debit value is always an expense regardless of its sign in
// the file.
func resolveAmount(amount, credit, debit string) (int64, error) {
	if strings.TrimSpace(amount) != "" {
		cents, err := core.ParseAmountCents(amount)
		if err != nil {
			return 0, fmt.Errorf("bad amount %q", amount)
		}
		return cents, nil
	}
	var total int64
	hasValue := false
	if strings.TrimSpace(credit) != "" {
		cents, err := core.ParseAmountCents(credit)
		if err != nil {
			return 0, fmt.Errorf("bad credit %q", credit)
		}
		total += abs(cents)
		hasValue = true
	}
	if strings.TrimSpace(debit) != "" {
		cents, err := core.ParseAmountCents(debit)
		if err != nil {
			return 0, fmt.Errorf("bad debit %q", debit)
		}
		total -= abs(cents)
		hasValue = true
	}
	if !hasValue {
		return 0, errors.New("no amount, credit or debit value")
	}
	return total, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Transaction converts a draft into a core transaction.
func (d Draft) Transaction() core.Transaction {
	tx := core.Transaction{
		Date:        d.Date,
		Amount:      core.Money{Cents: d.AmountCents},
		Description: d.Description,
		Merchant:    d.Merchant,
	}
	if strings.TrimSpace(d.Category) != "" {
		tx.Category = core.StrPtr(strings.TrimSpace(d.Category))
	}
	if strings.TrimSpace(d.Subcategory) != "" {
		tx.Subcategory = core.StrPtr(strings.TrimSpace(d.Subcategory))
	}
	return tx
}
