package sheets

import (
	"context"

	"financas/internal/core"
)

// MirrorEntry is the flat rendering of one stored transaction handed to a
// spreadsheet mirror.
type MirrorEntry struct {
	ID          int64
	Date        core.Date
	Description string
	Category    string
	Subcategory string
	CostType    core.CostType
	AmountCents int64
}

// TransactionWriter is the outbound port for mirror adapters.
type TransactionWriter interface {
	Append(ctx context.Context, entry MirrorEntry) (rowRef string, err error)
}
