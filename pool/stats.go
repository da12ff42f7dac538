/*
stats.go - Availability statistics per category

PURPOSE:
  Derives the dashboard numbers from the category tables: totals,
  claimed/available counts, fully-available counts (no ban annotations),
  and a ban histogram over the available rows. A row banned on N servers
  increments N histogram buckets.

ROBUSTNESS:
  Empty or entirely malformed tables yield zero-valued stats, never a
  failure. Only a ledger read error propagates (as store-unavailable).

SEE ALSO:
  - api/scheduler.go: Publishes these numbers on an interval
*/
package pool

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CategoryStats is the derived availability state of one category table.
type CategoryStats struct {
	Total          int            // well-formed rows (identifier non-blank)
	Claimed        int            // rows currently claimed
	Available      int            // Total - Claimed
	FullyAvailable int            // available rows with no ban annotations
	BannedOn       map[string]int // server -> available rows banned there
	Utilization    decimal.Decimal // Claimed/Total as a percentage, 1dp
}

// Stats aggregates availability counts from the ledger.
type Stats struct {
	ledger Ledger
}

// NewStats creates a stats aggregator over the given ledger.
func NewStats(l Ledger) *Stats {
	return &Stats{ledger: l}
}

// Compute derives per-category stats from the current table contents.
func (s *Stats) Compute(ctx context.Context) (map[Category]CategoryStats, error) {
	out := make(map[Category]CategoryStats, len(layouts))
	for _, cat := range Categories() {
		cs, err := s.computeCategory(ctx, cat)
		if err != nil {
			return nil, err
		}
		out[cat] = cs
	}
	return out, nil
}

func (s *Stats) computeCategory(ctx context.Context, cat Category) (CategoryStats, error) {
	cs := CategoryStats{BannedOn: make(map[string]int)}

	rows, err := s.ledger.ReadRows(ctx, cat.Layout().Table)
	if err != nil {
		return cs, fmt.Errorf("stats %s: %w", cat, err)
	}

	for _, row := range rows {
		acct, ok := decodeAccount(cat, row)
		if !ok {
			continue
		}
		cs.Total++
		if acct.Claimed {
			cs.Claimed++
			continue
		}
		cs.Available++
		if len(acct.Bans) == 0 {
			cs.FullyAvailable++
			continue
		}
		for _, server := range acct.Bans {
			cs.BannedOn[server]++
		}
	}

	if cs.Total > 0 {
		cs.Utilization = decimal.NewFromInt(int64(cs.Claimed)).
			Div(decimal.NewFromInt(int64(cs.Total))).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}
	return cs, nil
}
