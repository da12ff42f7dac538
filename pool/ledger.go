/*
ledger.go - Persistence contract for the tabular account store

PURPOSE:
  Defines the interface between the engine and the row-oriented store
  holding the category tables (and the auth-code table). The engine only
  needs four primitives: scan a table, update a cell, append rows, and
  clear a cell.

CONTRACT:
  - Rows and columns are zero-indexed.
  - ReadRows returns rows in stable insertion order; selection order
    (effectively FIFO) depends on this.
  - Rows may come back shorter than the category layout; callers pad.
  - Every operation fails with the single ErrStoreUnavailable kind;
    implementations wrap it so errors.Is works.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite-backed ledger
  - pool/store:   In-memory ledger for tests and dev

SEE ALSO:
  - repository.go: The only writer of account tables
  - authcode.go: Uses the same contract for the auth-code table
*/
package pool

import "context"

// Ledger is the tabular persistent store behind the account pools.
type Ledger interface {
	// ReadRows returns every row of the table in stable insertion order.
	// A missing table reads as empty, not as an error.
	ReadRows(ctx context.Context, table string) ([][]string, error)

	// WriteCell updates a single cell of an existing row.
	WriteCell(ctx context.Context, table string, row, col int, value string) error

	// AppendRows adds rows after the current last row, preserving order.
	AppendRows(ctx context.Context, table string, rows [][]string) error

	// ClearCell blanks a single cell of an existing row.
	ClearCell(ctx context.Context, table string, row, col int) error
}
