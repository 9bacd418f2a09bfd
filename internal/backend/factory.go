// Package backend selects the mirror implementation the sync worker writes
// to.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/config"
	"financas/internal/sheets"
	gsheet "financas/internal/sheets/google"
	"financas/internal/sheets/memory"
)

// MirrorType identifies a mirror implementation.
type MirrorType string

const (
	SheetsMirror MirrorType = "sheets"
	MemoryMirror MirrorType = "memory"
)

// String implements fmt.Stringer
func (mt MirrorType) String() string {
	return string(mt)
}

// IsValid returns true if the mirror type is valid
func (mt MirrorType) IsValid() bool {
	switch mt {
	case SheetsMirror, MemoryMirror:
		return true
	default:
		return false
	}
}

// NewMirror builds the transaction mirror named by the config.
func NewMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sheets.TransactionWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mt := MirrorType(cfg.MirrorBackend)
	if !mt.IsValid() {
		return nil, fmt.Errorf("invalid mirror backend: %s", cfg.MirrorBackend)
	}

	switch mt {
	case SheetsMirror:
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize Google Sheets mirror: %w", err)
		}
		logger.Info("Initialized Google Sheets mirror",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return cli, nil

	default:
		logger.Info("Initialized in-memory mirror")
		return memory.New(), nil
	}
}
