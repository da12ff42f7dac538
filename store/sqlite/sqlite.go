/*
Package sqlite provides a SQLite-backed implementation of the Ledger.

PURPOSE:
  Persists the category tables (and the auth-code table) as ordered rows
  in a single SQLite database. Each logical table keeps its rows keyed by
  an insertion position, so scan order is stable and selection stays
  FIFO by row position.

SCHEMA:
  ledger_rows(table_name, position, cells)
  cells is a JSON-encoded array of cell strings; positions are dense per
  table and assigned on append.

FAILURE MODEL:
  Every database error is wrapped with pool.ErrStoreUnavailable so
  callers can classify it with errors.Is. The underlying cause stays in
  the message for operator logs.

CONCURRENCY:
  Uses sync.Mutex for thread-safety around read-modify-write of a row.
  SQLite is opened with WAL mode for better crash recovery.

USAGE:
  ledger, err := sqlite.New("./data/pool.db")
  if err != nil {
      log.Fatal(err)
  }
  defer ledger.Close()

  repo := pool.NewRepository(ledger)

SEE ALSO:
  - pool/ledger.go: Contract definition
  - pool/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/account-pool/pool"
)

// Store implements pool.Ledger using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite ledger at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- One row per logical table row; position preserves insertion order.
	CREATE TABLE IF NOT EXISTS ledger_rows (
		table_name TEXT NOT NULL,
		position   INTEGER NOT NULL,
		cells      TEXT NOT NULL,
		PRIMARY KEY (table_name, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER OPERATIONS
// =============================================================================

func (s *Store) ReadRows(ctx context.Context, table string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM ledger_rows WHERE table_name = ? ORDER BY position`, table)
	if err != nil {
		return nil, storeErr("read "+table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storeErr("scan "+table, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, storeErr("decode "+table, err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("read "+table, err)
	}
	return out, nil
}

func (s *Store) WriteCell(ctx context.Context, table string, row, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT cells FROM ledger_rows WHERE table_name = ? AND position = ?`,
		table, row).Scan(&raw)
	if err != nil {
		return storeErr(fmt.Sprintf("write %s[%d]", table, row), err)
	}

	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return storeErr(fmt.Sprintf("decode %s[%d]", table, row), err)
	}
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value

	encoded, err := json.Marshal(cells)
	if err != nil {
		return storeErr(fmt.Sprintf("encode %s[%d]", table, row), err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE ledger_rows SET cells = ? WHERE table_name = ? AND position = ?`,
		string(encoded), table, row)
	if err != nil {
		return storeErr(fmt.Sprintf("write %s[%d]", table, row), err)
	}
	return nil
}

func (s *Store) AppendRows(ctx context.Context, table string, newRows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("append "+table, err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM ledger_rows WHERE table_name = ?`,
		table).Scan(&next)
	if err != nil {
		return storeErr("append "+table, err)
	}

	for i, cells := range newRows {
		encoded, err := json.Marshal(cells)
		if err != nil {
			return storeErr("encode "+table, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ledger_rows (table_name, position, cells) VALUES (?, ?, ?)`,
			table, next+i, string(encoded))
		if err != nil {
			return storeErr("append "+table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("append "+table, err)
	}
	return nil
}

func (s *Store) ClearCell(ctx context.Context, table string, row, col int) error {
	return s.WriteCell(ctx, table, row, col, "")
}

// storeErr maps a database failure onto the ledger contract's single
// error kind, keeping the cause for operator logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", pool.ErrStoreUnavailable, op, err)
}
