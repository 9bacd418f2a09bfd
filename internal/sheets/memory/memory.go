// Package memory provides an in-process mirror used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "financas/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	entries []ports.MirrorEntry
}

func New() *Store {
	return &Store{}
}

var _ ports.TransactionWriter = (*Store)(nil)

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, entry ports.MirrorEntry) (string, error) {
	if err := entry.Date.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []ports.MirrorEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.MirrorEntry(nil), s.entries...)
}
