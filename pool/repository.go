/*
repository.go - Account repository: scan-and-claim, release, bans, import

PURPOSE:
  Translates raw ledger rows into typed accounts and implements the
  account lifecycle: claim the first selectable row, release a claim
  back to the pool, append ban annotations, and import new records.

SELECTABILITY INVARIANT:
  A row is selectable iff it is unclaimed AND (no filter is given OR the
  filter string does not appear, case-insensitively, in its ban
  annotations). Selection is deterministic: first matching row in table
  scan order.

CONCURRENCY:
  The ledger contract gives no read-modify-write atomicity, so two
  concurrent claims could in principle pick the same row. The repository
  closes that gap with a single mutex serializing every mutating table
  sequence. Single-process semantics only.

FAILURE MODEL:
  - No selectable row          -> NoStockError (expected, common)
  - Unknown identifier         -> ErrAccountNotFound (expected)
  - Ledger read/write failure  -> ErrStoreUnavailable (retryable)
  Malformed rows (blank identifier) are skipped, never fatal.

SEE ALSO:
  - types.go: Row encoding/decoding and layouts
  - coordinator.go: Guards and pack orchestration on top of this
  - factory/records.go: Parses bulk-import lines into accounts
*/
package pool

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Repository implements the account lifecycle over a Ledger.
type Repository struct {
	ledger Ledger
	now    func() time.Time

	// Serializes read-then-write sequences. The ledger has no row-level
	// transactions, so this is what keeps two claims off the same row.
	mu sync.Mutex
}

// NewRepository creates a repository over the given ledger.
func NewRepository(l Ledger) *Repository {
	return &Repository{ledger: l, now: time.Now}
}

// =============================================================================
// CLAIM
// =============================================================================

// ClaimAccount scans the category table in stable order and claims the
// first selectable row: unclaimed, and not banned on the filter server
// when a filter is given. The claimed flag and a status note are written
// back; the returned copy carries the pre-claim record data.
func (r *Repository) ClaimAccount(ctx context.Context, cat Category, requester, filter string) (*Account, error) {
	if _, ok := layouts[cat]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l := cat.Layout()
	rows, err := r.ledger.ReadRows(ctx, l.Table)
	if err != nil {
		return nil, fmt.Errorf("claim %s: %w", cat, err)
	}

	for i, row := range rows {
		acct, ok := decodeAccount(cat, row)
		if !ok {
			continue // malformed row, never selectable
		}
		if acct.Claimed {
			continue
		}
		if filter != "" && bansContain(padRow(row, l.Columns)[l.BansCol], filter) {
			continue
		}

		note := fmt.Sprintf("claimed by %s at %s", requester, r.now().UTC().Format(time.RFC3339))
		if err := r.ledger.WriteCell(ctx, l.Table, i, l.ClaimedCol, cellClaimed); err != nil {
			return nil, fmt.Errorf("claim %s: %w", acct.Identifier, err)
		}
		if err := r.ledger.WriteCell(ctx, l.Table, i, l.StatusCol, note); err != nil {
			return nil, fmt.Errorf("claim %s: %w", acct.Identifier, err)
		}

		// Pre-claim copy: the caller gets the credentials, not the
		// claim metadata.
		acct.Claimed = false
		acct.StatusNote = ""
		return &acct, nil
	}

	return nil, &NoStockError{Category: cat, Filter: filter}
}

// =============================================================================
// RELEASE
// =============================================================================

// ReleaseAccount returns the account to the pool: claimed flag off and
// status note cleared. Ban annotations are untouched. Releasing an
// already-unclaimed account succeeds silently.
func (r *Repository) ReleaseAccount(ctx context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, err := r.locate(ctx, identifier)
	if err != nil {
		return err
	}

	l := loc.category.Layout()
	if err := r.ledger.WriteCell(ctx, l.Table, loc.row, l.ClaimedCol, cellUnclaimed); err != nil {
		return fmt.Errorf("release %s: %w", identifier, err)
	}
	if err := r.ledger.ClearCell(ctx, l.Table, loc.row, l.StatusCol); err != nil {
		return fmt.Errorf("release %s: %w", identifier, err)
	}
	return nil
}

// =============================================================================
// BAN ANNOTATION
// =============================================================================

// AnnotateBan records that the account is banned on server. Returns
// true when the annotation was added, false when it was already listed
// (idempotent, not an error).
func (r *Repository) AnnotateBan(ctx context.Context, identifier, server string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, err := r.locate(ctx, identifier)
	if err != nil {
		return false, err
	}

	l := loc.category.Layout()
	cell := padRow(loc.cells, l.Columns)[l.BansCol]
	if bansContain(cell, server) {
		return false, nil
	}

	bans := append(splitBans(cell), strings.TrimSpace(server))
	if err := r.ledger.WriteCell(ctx, l.Table, loc.row, l.BansCol, joinBans(bans)); err != nil {
		return false, fmt.Errorf("annotate %s: %w", identifier, err)
	}
	return true, nil
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportAccounts appends new accounts to the category table, skipping
// identifiers already present in the table or earlier in the batch
// (case-insensitive). Accounts belonging to a different category are
// counted as neither added nor duplicate.
func (r *Repository) ImportAccounts(ctx context.Context, cat Category, accounts []Account) (ImportResult, error) {
	if _, ok := layouts[cat]; !ok {
		return ImportResult{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	l := cat.Layout()
	rows, err := r.ledger.ReadRows(ctx, l.Table)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import %s: %w", cat, err)
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if acct, ok := decodeAccount(cat, row); ok {
			seen[strings.ToLower(acct.Identifier)] = true
		}
	}

	var result ImportResult
	var fresh [][]string
	for _, a := range accounts {
		id := strings.ToLower(strings.TrimSpace(a.Identifier))
		if id == "" || a.Category != cat {
			continue
		}
		if seen[id] {
			result.Duplicates++
			continue
		}
		seen[id] = true
		fresh = append(fresh, encodeRow(a))
		result.Added++
	}

	if len(fresh) > 0 {
		if err := r.ledger.AppendRows(ctx, l.Table, fresh); err != nil {
			return ImportResult{}, fmt.Errorf("import %s: %w", cat, err)
		}
	}
	return result, nil
}

// =============================================================================
// LOOKUP
// =============================================================================

// FindAccount searches all category tables for the identifier
// (case-insensitive) and returns the decoded record.
func (r *Repository) FindAccount(ctx context.Context, identifier string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, err := r.locate(ctx, identifier)
	if err != nil {
		return nil, err
	}
	acct, _ := decodeAccount(loc.category, loc.cells)
	return &acct, nil
}

// RawRow returns the padded raw cells of one row of a category table,
// for operator inspection. Row numbers are 1-based over data rows.
func (r *Repository) RawRow(ctx context.Context, cat Category, n int) ([]string, error) {
	if _, ok := layouts[cat]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, n)
	}

	l := cat.Layout()
	rows, err := r.ledger.ReadRows(ctx, l.Table)
	if err != nil {
		return nil, fmt.Errorf("raw row %s/%d: %w", cat, n, err)
	}
	if n > len(rows) {
		return nil, fmt.Errorf("%w: %d of %d", ErrRowOutOfRange, n, len(rows))
	}
	return padRow(rows[n-1], l.Columns), nil
}

// location pins an identifier to a physical row.
type location struct {
	category Category
	row      int
	cells    []string
}

// locate scans all category tables for the identifier. Callers hold r.mu.
func (r *Repository) locate(ctx context.Context, identifier string) (location, error) {
	want := strings.ToLower(strings.TrimSpace(identifier))
	for _, cat := range Categories() {
		l := cat.Layout()
		rows, err := r.ledger.ReadRows(ctx, l.Table)
		if err != nil {
			return location{}, fmt.Errorf("locate %s: %w", identifier, err)
		}
		for i, row := range rows {
			acct, ok := decodeAccount(cat, row)
			if !ok {
				continue
			}
			if strings.ToLower(acct.Identifier) == want {
				return location{category: cat, row: i, cells: row}, nil
			}
		}
	}
	return location{}, fmt.Errorf("%w: %s", ErrAccountNotFound, identifier)
}
