// Package store provides Ledger implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/account-pool/pool"
)

// =============================================================================
// MEMORY LEDGER - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]string)}
}

// ReadRows returns a deep copy so callers can't mutate stored rows.
func (m *Memory) ReadRows(_ context.Context, table string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[table]
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *Memory) WriteCell(_ context.Context, table string, row, col int, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	if row < 0 || row >= len(rows) {
		return fmt.Errorf("%w: %s row %d", pool.ErrStoreUnavailable, table, row)
	}
	// Grow the row when the layout expects more columns than were stored.
	for len(rows[row]) <= col {
		rows[row] = append(rows[row], "")
	}
	rows[row][col] = value
	return nil
}

func (m *Memory) AppendRows(_ context.Context, table string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		m.tables[table] = append(m.tables[table], append([]string(nil), row...))
	}
	return nil
}

func (m *Memory) ClearCell(ctx context.Context, table string, row, col int) error {
	return m.WriteCell(ctx, table, row, col, "")
}
