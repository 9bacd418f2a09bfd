package csvio

import (
	"strings"

	"financas/internal/core"
)

// ExportRow is one line of the canonical export format. Type carries the
// resolved cost type when the caller classified the transaction; it may be
// empty for uncategorized rows.
type ExportRow struct {
	Date        core.Date
	Description string
	Category    string
	Type        string
	AmountCents int64
}

const exportHeader = "date,description,category,type,amount"

// Export renders rows in the canonical comma-separated format with ISO
// dates and dot-decimal amounts. Importing the output reproduces the same
// (date, amount, description, category) tuples.
func Export(rows []ExportRow) string {
	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(r.Date.Format("2006-01-02"))
		b.WriteByte(',')
		b.WriteString(quoteField(r.Description))
		b.WriteByte(',')
		b.WriteString(quoteField(r.Category))
		b.WriteByte(',')
		b.WriteString(r.Type)
		b.WriteByte(',')
		b.WriteString(core.FormatDecimal(r.AmountCents))
		b.WriteByte('\n')
	}
	return b.String()
}

// quoteField wraps a value in quotes when it contains the separator. Inner
// quotes are dropped rather than doubled; the importer's quote toggling has
// no escape sequence.
func quoteField(s string) string {
	s = strings.ReplaceAll(s, "\"", "")
	if strings.ContainsRune(s, ',') {
		return "\"" + s + "\""
	}
	return s
}
