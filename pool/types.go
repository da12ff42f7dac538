/*
Package pool provides the core account allocation engine.

PURPOSE:
  This package contains the domain types and algorithms for distributing
  shared credentials out of a pooled inventory. Accounts live in three
  parallel category tables inside a tabular ledger store; the engine
  handles claiming, releasing, ban annotation, bulk import, and the
  derived availability statistics.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: A closed enum of the three account pools
  - TableLayout: Maps the logical account fields onto column positions
  - Account: A typed account record decoded from a ledger row
  - Pack: One claimed account from each category, tracked together

DESIGN PRINCIPLES:
  1. Closed enum: Exactly three categories, no stringly-typed dispatch
  2. Explicit layouts: Column positions live in one lookup table, not
     scattered positional indexing
  3. Defensive decoding: Short or malformed rows never panic; rows
     without an identifier are simply skipped

SEE ALSO:
  - ledger.go: Tabular store contract the engine reads and writes
  - repository.go: Scan-and-claim, release, ban annotation, import
  - coordinator.go: Per-user guards and pack allocation
*/
package pool

import (
	"fmt"
	"strings"
)

// =============================================================================
// CATEGORY - One of three parallel account pools
// =============================================================================

type Category string

const (
	CategoryFiveM   Category = "fivem"
	CategoryDiscord Category = "discord"
	CategorySteam   Category = "steam"
)

// Categories returns all categories in fixed allocation order.
// Pack allocation claims in exactly this order.
func Categories() []Category {
	return []Category{CategoryFiveM, CategoryDiscord, CategorySteam}
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryFiveM:
		return CategoryFiveM, nil
	case CategoryDiscord:
		return CategoryDiscord, nil
	case CategorySteam:
		return CategorySteam, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// =============================================================================
// TABLE LAYOUT - Column mapping for a category table
// =============================================================================

// TableLayout describes where each logical field sits in a ledger row.
// The discord table carries an extra auxiliary-token column, which shifts
// its status column one position to the right.
type TableLayout struct {
	Table      string // ledger table name
	Columns    int    // expected row width; shorter rows are padded
	ClaimedCol int
	IDCol      int
	SecretCol  int
	BansCol    int
	TokenCol   int // -1 when the category has no auxiliary token
	StatusCol  int
}

var layouts = map[Category]TableLayout{
	CategoryFiveM: {
		Table: "fivem", Columns: 5,
		ClaimedCol: 0, IDCol: 1, SecretCol: 2, BansCol: 3, TokenCol: -1, StatusCol: 4,
	},
	CategoryDiscord: {
		Table: "discord", Columns: 6,
		ClaimedCol: 0, IDCol: 1, SecretCol: 2, BansCol: 3, TokenCol: 4, StatusCol: 5,
	},
	CategorySteam: {
		Table: "steam", Columns: 5,
		ClaimedCol: 0, IDCol: 1, SecretCol: 2, BansCol: 3, TokenCol: -1, StatusCol: 4,
	},
}

// Layout returns the column layout for the category's table.
func (c Category) Layout() TableLayout {
	return layouts[c]
}

// HasToken reports whether the category carries an auxiliary 2FA token.
func (c Category) HasToken() bool {
	return layouts[c].TokenCol >= 0
}

// =============================================================================
// ACCOUNT - Typed record decoded from a ledger row
// =============================================================================

// Account is one credential set in a category table.
type Account struct {
	Category   Category
	Identifier string // natural key, unique per category (case-insensitive)
	Secret     string
	Token      string // auxiliary 2FA token; discord only
	Claimed    bool
	Bans       []string // server names this account is banned on
	StatusNote string   // audit note of the last claim; empty when unclaimed
}

// Claim cell values. The ledger stores the claimed flag as text.
const (
	cellClaimed   = "TRUE"
	cellUnclaimed = "FALSE"
)

// decodeAccount converts a raw ledger row into an Account.
// Returns false for rows without an identifier; those are malformed and
// never selectable.
func decodeAccount(c Category, row []string) (Account, bool) {
	l := c.Layout()
	row = padRow(row, l.Columns)
	id := strings.TrimSpace(row[l.IDCol])
	if id == "" {
		return Account{}, false
	}
	a := Account{
		Category:   c,
		Identifier: id,
		Secret:     row[l.SecretCol],
		Claimed:    strings.EqualFold(row[l.ClaimedCol], cellClaimed),
		Bans:       splitBans(row[l.BansCol]),
		StatusNote: row[l.StatusCol],
	}
	if l.TokenCol >= 0 {
		a.Token = strings.TrimSpace(row[l.TokenCol])
	}
	return a, true
}

// encodeRow converts an Account into a fresh ledger row.
// Freshly imported accounts are always unclaimed with an empty status note.
func encodeRow(a Account) []string {
	l := a.Category.Layout()
	row := make([]string, l.Columns)
	row[l.ClaimedCol] = cellUnclaimed
	row[l.IDCol] = a.Identifier
	row[l.SecretCol] = a.Secret
	row[l.BansCol] = joinBans(a.Bans)
	if l.TokenCol >= 0 {
		row[l.TokenCol] = a.Token
	}
	return row
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

// =============================================================================
// BAN ANNOTATIONS - Comma-joined server names
// =============================================================================

// splitBans parses a comma-joined ban cell into individual server names.
// The legacy "none" placeholder counts as no bans.
func splitBans(cell string) []string {
	var bans []string
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		bans = append(bans, part)
	}
	return bans
}

func joinBans(bans []string) string {
	return strings.Join(bans, ", ")
}

// bansContain reports whether the ban cell mentions server, matching the
// selection filter semantics: case-insensitive substring over the joined
// annotation string.
func bansContain(cell, server string) bool {
	return strings.Contains(strings.ToLower(cell), strings.ToLower(server))
}

// =============================================================================
// PACK - One account per category, tracked together
// =============================================================================

// Pack groups one claimed account from each category. It is ephemeral:
// later joint release or ban reporting addresses it by member identifiers.
type Pack map[Category]Account

// Identifiers returns the member identifiers in allocation order.
func (p Pack) Identifiers() []string {
	ids := make([]string, 0, len(p))
	for _, c := range Categories() {
		if a, ok := p[c]; ok {
			ids = append(ids, a.Identifier)
		}
	}
	return ids
}

// =============================================================================
// IMPORT RESULT
// =============================================================================

// ImportResult summarizes a bulk import batch.
type ImportResult struct {
	Added      int
	Duplicates int
}
