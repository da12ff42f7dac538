/*
authcode_test.go - Unit tests for access code verification and minting
*/
package pool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/account-pool/pool"
	"github.com/warp/account-pool/pool/store"
)

func TestAuthCodes_MintThenVerify(t *testing.T) {
	m := store.NewMemory()
	codes := pool.NewAuthCodes(m)
	ctx := context.Background()

	minted, err := codes.Mint(ctx, 3, time.Hour)
	require.NoError(t, err)
	require.Len(t, minted, 3)

	// Each code verifies exactly once
	require.NoError(t, codes.Verify(ctx, minted[1], "user-1"))
	err = codes.Verify(ctx, minted[1], "user-2")
	assert.True(t, errors.Is(err, pool.ErrCodeUsed))

	// The consumed row records who used it and when
	rows, _ := m.ReadRows(ctx, "auth_codes")
	assert.Equal(t, "used", rows[1][2])
	assert.Equal(t, "user-1", rows[1][3])
	assert.NotEmpty(t, rows[1][4])
}

func TestAuthCodes_UnknownCode(t *testing.T) {
	codes := pool.NewAuthCodes(store.NewMemory())
	err := codes.Verify(context.Background(), "not-a-code", "user-1")
	assert.True(t, errors.Is(err, pool.ErrCodeInvalid))
}

func TestAuthCodes_ExpiredCodeMarked(t *testing.T) {
	// GIVEN: An active code whose expiry is in the past
	m := store.NewMemory()
	ctx := context.Background()
	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, m.AppendRows(ctx, "auth_codes", [][]string{
		{"stale-code", past, "active", "", ""},
	}))
	codes := pool.NewAuthCodes(m)

	// WHEN: Verifying it
	err := codes.Verify(ctx, "stale-code", "user-1")

	// THEN: Rejected and the row is flipped to expired
	assert.True(t, errors.Is(err, pool.ErrCodeExpired))
	rows, _ := m.ReadRows(ctx, "auth_codes")
	assert.Equal(t, "expired", rows[0][2])
}

func TestAuthCodes_MintRejectsNonPositiveCount(t *testing.T) {
	codes := pool.NewAuthCodes(store.NewMemory())
	_, err := codes.Mint(context.Background(), 0, time.Hour)
	assert.Error(t, err)
}
