/*
memory_test.go - Unit tests for the in-memory ledger
*/
package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/warp/account-pool/pool"
	"github.com/warp/account-pool/pool/store"
)

func TestMemory_MissingTableReadsEmpty(t *testing.T) {
	m := store.NewMemory()
	rows, err := m.ReadRows(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty table, got %v", rows)
	}
}

func TestMemory_ReadReturnsCopies(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	if err := m.AppendRows(ctx, "t", [][]string{{"a", "b"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, _ := m.ReadRows(ctx, "t")
	rows[0][0] = "mutated"

	again, _ := m.ReadRows(ctx, "t")
	if again[0][0] != "a" {
		t.Errorf("Expected stored row untouched, got %q", again[0][0])
	}
}

func TestMemory_WriteCellGrowsShortRow(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	if err := m.AppendRows(ctx, "t", [][]string{{"only"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := m.WriteCell(ctx, "t", 0, 3, "far"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, _ := m.ReadRows(ctx, "t")
	if len(rows[0]) != 4 || rows[0][3] != "far" {
		t.Errorf("Expected grown row, got %v", rows[0])
	}
}

func TestMemory_WriteCellOutOfRangeRow(t *testing.T) {
	m := store.NewMemory()
	err := m.WriteCell(context.Background(), "t", 0, 0, "x")
	if !errors.Is(err, pool.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestMemory_ClearCell(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	if err := m.AppendRows(ctx, "t", [][]string{{"a", "b"}}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := m.ClearCell(ctx, "t", 0, 1); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	rows, _ := m.ReadRows(ctx, "t")
	if rows[0][1] != "" {
		t.Errorf("Expected cleared cell, got %q", rows[0][1])
	}
}
