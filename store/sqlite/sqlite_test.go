/*
sqlite_test.go - Unit tests for the SQLite-backed ledger
*/
package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/account-pool/pool"
	"github.com/warp/account-pool/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_AppendAndReadPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendRows(ctx, "fivem", [][]string{
		{"FALSE", "a@mail.com", "pw"},
		{"FALSE", "b@mail.com", "pw"},
	}))
	require.NoError(t, store.AppendRows(ctx, "fivem", [][]string{
		{"FALSE", "c@mail.com", "pw"},
	}))

	rows, err := store.ReadRows(ctx, "fivem")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a@mail.com", rows[0][1])
	assert.Equal(t, "c@mail.com", rows[2][1])
}

func TestSQLite_TablesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendRows(ctx, "fivem", [][]string{{"FALSE", "a@mail.com"}}))

	rows, err := store.ReadRows(ctx, "steam")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLite_WriteCellGrowsShortRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendRows(ctx, "fivem", [][]string{{"FALSE", "a@mail.com"}}))
	require.NoError(t, store.WriteCell(ctx, "fivem", 0, 4, "claimed by user-1"))

	rows, err := store.ReadRows(ctx, "fivem")
	require.NoError(t, err)
	require.Len(t, rows[0], 5)
	assert.Equal(t, "claimed by user-1", rows[0][4])
}

func TestSQLite_WriteCellMissingRow(t *testing.T) {
	store := newTestStore(t)
	err := store.WriteCell(context.Background(), "fivem", 7, 0, "x")
	assert.True(t, errors.Is(err, pool.ErrStoreUnavailable))
}

func TestSQLite_ClearCell(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendRows(ctx, "fivem", [][]string{
		{"TRUE", "a@mail.com", "pw", "", "claimed by user-1"},
	}))
	require.NoError(t, store.ClearCell(ctx, "fivem", 0, 4))

	rows, err := store.ReadRows(ctx, "fivem")
	require.NoError(t, err)
	assert.Equal(t, "", rows[0][4])
}

func TestSQLite_BacksTheRepository(t *testing.T) {
	// The engine end to end over the persistent ledger: import, claim,
	// ban, release.
	store := newTestStore(t)
	ctx := context.Background()
	repo := pool.NewRepository(store)

	result, err := repo.ImportAccounts(ctx, pool.CategoryFiveM, []pool.Account{
		{Category: pool.CategoryFiveM, Identifier: "fv@mail.com", Secret: "pw"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	acct, err := repo.ClaimAccount(ctx, pool.CategoryFiveM, "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, "fv@mail.com", acct.Identifier)

	added, err := repo.AnnotateBan(ctx, "fv@mail.com", "Vice City")
	require.NoError(t, err)
	assert.True(t, added)

	require.NoError(t, repo.ReleaseAccount(ctx, "fv@mail.com"))

	rows, err := store.ReadRows(ctx, "fivem")
	require.NoError(t, err)
	assert.Equal(t, "FALSE", rows[0][0])
	assert.Equal(t, "Vice City", rows[0][3])
}
