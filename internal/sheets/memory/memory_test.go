package memory

import (
	"context"
	"testing"

	"financas/internal/core"

	ports "financas/internal/sheets"
)

func TestAppendAndEntries(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, ports.MirrorEntry{
		ID:          1,
		Date:        core.NewDate(2025, 3, 10),
		Description: "Aluguel",
		Category:    "Moradia",
		CostType:    core.CostFixed,
		AmountCents: -200000,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("ref = %q", ref)
	}

	entries := s.Entries()
	if len(entries) != 1 || entries[0].Description != "Aluguel" {
		t.Fatalf("entries = %+v", entries)
	}

	// The returned slice is a copy.
	entries[0].Description = "mutated"
	if s.Entries()[0].Description != "Aluguel" {
		t.Fatal("internal state leaked through Entries")
	}
}

func TestAppendRejectsZeroDate(t *testing.T) {
	s := New()
	if _, err := s.Append(context.Background(), ports.MirrorEntry{ID: 2}); err == nil {
		t.Fatal("expected error for zero date")
	}
}
