package postgres

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

var (
	alice = domain.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	bob   = domain.MustParseAddress("So11111111111111111111111111111111111111112")
)

func TestLedgerStore_MintAndBalances(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	require.NoError(t, store.Mint(ctx, alice, 700))
	require.NoError(t, store.Mint(ctx, alice, 300))
	require.NoError(t, store.Mint(ctx, bob, 5))

	supply, err := store.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1005), supply)

	bal, err := store.Balance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)

	unknown, err := store.Balance(ctx, domain.Address{})
	require.NoError(t, err)
	assert.Zero(t, unknown)
}

func TestLedgerStore_MintRejectsOverflow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	require.NoError(t, store.Mint(ctx, alice, math.MaxInt64))

	err := store.Mint(ctx, bob, 1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Mint(ctx, bob, math.MaxUint64)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Failed mint must not credit bob
	bal, err := store.Balance(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestLedgerStore_WithdrawDepositBurn(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLedgerStore(pool)

	require.NoError(t, store.Mint(ctx, alice, 100))

	err := store.Withdraw(ctx, alice, 101)
	assert.ErrorIs(t, err, storage.ErrInsufficientBalance)

	err = store.Withdraw(ctx, bob, 1)
	assert.ErrorIs(t, err, storage.ErrInsufficientBalance)

	require.NoError(t, store.Withdraw(ctx, alice, 50))
	require.NoError(t, store.Deposit(ctx, bob, 20))
	require.NoError(t, store.Burn(ctx, 30))

	aliceBal, _ := store.Balance(ctx, alice)
	bobBal, _ := store.Balance(ctx, bob)
	supply, _ := store.TotalSupply(ctx)

	assert.Equal(t, uint64(50), aliceBal)
	assert.Equal(t, uint64(20), bobBal)
	assert.Equal(t, uint64(70), supply)

	err = store.Burn(ctx, 71)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
