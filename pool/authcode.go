/*
authcode.go - Access code verification and minting

PURPOSE:
  One-time access codes gate entry to the distribution panel. Codes live
  in their own ledger table and move through three states: active ->
  used (recording who and when), or active -> expired when verified past
  their expiry. Minting appends fresh UUID codes with a TTL.

TABLE LAYOUT (auth_codes):
  0: code   1: expires (RFC3339)   2: status   3: used_by   4: used_at

The verified-role check itself is an external collaborator; the engine
only owns the code lifecycle.
*/
package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const authCodeTable = "auth_codes"

// Auth code table columns.
const (
	codeCol    = 0
	expiresCol = 1
	statusCol  = 2
	usedByCol  = 3
	usedAtCol  = 4
)

// Auth code statuses.
const (
	codeActive  = "active"
	codeUsed    = "used"
	codeExpired = "expired"
)

// AuthCodes manages the access-code table.
type AuthCodes struct {
	ledger Ledger
	now    func() time.Time
}

// NewAuthCodes creates an auth-code manager over the given ledger.
func NewAuthCodes(l Ledger) *AuthCodes {
	return &AuthCodes{ledger: l, now: time.Now}
}

// Verify consumes the code for the user. An unknown code yields
// ErrCodeInvalid, a non-active one ErrCodeUsed, and a past-expiry one is
// marked expired and yields ErrCodeExpired.
func (a *AuthCodes) Verify(ctx context.Context, code, userID string) error {
	rows, err := a.ledger.ReadRows(ctx, authCodeTable)
	if err != nil {
		return fmt.Errorf("verify code: %w", err)
	}

	for i, row := range rows {
		row = padRow(row, usedAtCol+1)
		if row[codeCol] != code {
			continue
		}
		if row[statusCol] != codeActive {
			return ErrCodeUsed
		}
		expires, perr := time.Parse(time.RFC3339, row[expiresCol])
		if perr == nil && expires.Before(a.now()) {
			if werr := a.ledger.WriteCell(ctx, authCodeTable, i, statusCol, codeExpired); werr != nil {
				return fmt.Errorf("expire code: %w", werr)
			}
			return ErrCodeExpired
		}
		if err := a.ledger.WriteCell(ctx, authCodeTable, i, statusCol, codeUsed); err != nil {
			return fmt.Errorf("consume code: %w", err)
		}
		if err := a.ledger.WriteCell(ctx, authCodeTable, i, usedByCol, userID); err != nil {
			return fmt.Errorf("consume code: %w", err)
		}
		if err := a.ledger.WriteCell(ctx, authCodeTable, i, usedAtCol, a.now().UTC().Format("2006-01-02")); err != nil {
			return fmt.Errorf("consume code: %w", err)
		}
		return nil
	}
	return ErrCodeInvalid
}

// Mint appends count fresh active codes expiring after ttl and returns
// their values.
func (a *AuthCodes) Mint(ctx context.Context, count int, ttl time.Duration) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("mint: count must be positive, got %d", count)
	}

	expires := a.now().Add(ttl).UTC().Format(time.RFC3339)
	codes := make([]string, 0, count)
	rows := make([][]string, 0, count)
	for i := 0; i < count; i++ {
		code := uuid.NewString()
		codes = append(codes, code)
		rows = append(rows, []string{code, expires, codeActive, "", ""})
	}

	if err := a.ledger.AppendRows(ctx, authCodeTable, rows); err != nil {
		return nil, fmt.Errorf("mint codes: %w", err)
	}
	return codes, nil
}
