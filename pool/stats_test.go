/*
stats_test.go - Unit tests for availability statistics
*/
package pool_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/account-pool/pool"
	"github.com/warp/account-pool/pool/store"
)

func TestStats_CountsAndBanHistogram(t *testing.T) {
	// GIVEN: A table with one claimed row and three available rows,
	// two of them carrying ban annotations
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.AppendRows(ctx, "fivem", [][]string{
		{"TRUE", "a@mail.com", "pw", "", "claimed by x"},
		{"FALSE", "b@mail.com", "pw", "", ""},
		{"FALSE", "c@mail.com", "pw", "Vice City", ""},
		{"FALSE", "d@mail.com", "pw", "Vice City, Legacy", ""},
		{"FALSE", "", "orphan", "", ""}, // malformed, not counted
	}))

	stats, err := pool.NewStats(m).Compute(ctx)
	require.NoError(t, err)

	cs := stats[pool.CategoryFiveM]
	assert.Equal(t, 4, cs.Total)
	assert.Equal(t, 1, cs.Claimed)
	assert.Equal(t, 3, cs.Available)
	assert.Equal(t, 1, cs.FullyAvailable)
	assert.Equal(t, map[string]int{"Vice City": 2, "Legacy": 1}, cs.BannedOn)
	assert.True(t, cs.Utilization.Equal(decimal.NewFromInt(25)), "got %s", cs.Utilization)
}

func TestStats_EmptyTablesYieldZeros(t *testing.T) {
	m := store.NewMemory()

	stats, err := pool.NewStats(m).Compute(context.Background())
	require.NoError(t, err)

	for _, cat := range pool.Categories() {
		cs := stats[cat]
		assert.Zero(t, cs.Total, "category %s", cat)
		assert.True(t, cs.Utilization.IsZero(), "category %s", cat)
	}
}

func TestStats_ClaimedRowBansNotInHistogram(t *testing.T) {
	// The histogram covers available rows only: bans on a claimed row
	// do not matter until it comes back to the pool.
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.AppendRows(ctx, "steam", [][]string{
		{"TRUE", "a@mail.com", "pw", "Vice City", "claimed"},
		{"FALSE", "b@mail.com", "pw", "", ""},
	}))

	stats, err := pool.NewStats(m).Compute(ctx)
	require.NoError(t, err)

	cs := stats[pool.CategorySteam]
	assert.Empty(t, cs.BannedOn)
	assert.True(t, cs.Utilization.Equal(decimal.NewFromInt(50)), "got %s", cs.Utilization)
}
