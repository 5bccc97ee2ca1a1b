package clearing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonife/walletcore/internal/clearing"
	"github.com/tonife/walletcore/internal/store"
)

func TestResolveCreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	r := clearing.NewResolver("")

	id, err := r.Resolve(ctx, s, "NGN")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	wallet, err := s.GetWallet(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "NGN", wallet.Currency)

	bal, err := s.GetBalanceForUpdate(ctx, id)
	require.NoError(t, err)
	assert.True(t, bal.Available.IsZero())

	user, err := s.GetUserByEmail(ctx, clearing.DefaultEmail)
	require.NoError(t, err)
	assert.Equal(t, user.ID, wallet.UserID)
}

func TestResolveIsStablePerCurrency(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	r := clearing.NewResolver("ops@example.com")

	first, err := r.Resolve(ctx, s, "NGN")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, s, "NGN")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	usd, err := r.Resolve(ctx, s, "USD")
	require.NoError(t, err)
	assert.NotEqual(t, first, usd, "each currency gets its own clearing wallet")
}
