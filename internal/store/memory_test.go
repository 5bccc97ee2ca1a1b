package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/store"
)

func seedBalance(t *testing.T, s *store.Memory, available string) string {
	t.Helper()
	walletID := domain.NewID(domain.PrefixWallet)
	require.NoError(t, s.InsertBalance(context.Background(), &domain.Balance{
		ID:        domain.NewID(domain.PrefixBalance),
		WalletID:  walletID,
		Available: decimal.RequireFromString(available),
	}))
	return walletID
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	walletID := seedBalance(t, s, "100.00")

	sentinel := errors.New("boom")
	err := s.WithinTx(ctx, func(q store.Querier) error {
		if err := q.UpdateAvailableBalance(ctx, walletID,
			decimal.RequireFromString("100.00"), decimal.RequireFromString("40.00")); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	bal, err := s.GetBalanceForUpdate(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", bal.Available.StringFixed(2), "the write inside the failed transaction must not stick")
}

func TestWithinTxCommitsOnNil(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	walletID := seedBalance(t, s, "100.00")

	err := s.WithinTx(ctx, func(q store.Querier) error {
		return q.UpdateAvailableBalance(ctx, walletID,
			decimal.RequireFromString("100.00"), decimal.RequireFromString("40.00"))
	})
	require.NoError(t, err)

	bal, err := s.GetBalanceForUpdate(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", bal.Available.StringFixed(2))
}

func TestUpdateAvailableBalanceIsConditional(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	walletID := seedBalance(t, s, "100.00")

	err := s.UpdateAvailableBalance(ctx, walletID,
		decimal.RequireFromString("90.00"), decimal.RequireFromString("40.00"))
	assert.ErrorIs(t, err, store.ErrStale, "a mismatched before-value means a concurrent writer won")
}

func TestUpdateIntentStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	intent := &domain.TransactionIntent{
		ID:        domain.NewID(domain.PrefixIntent),
		WalletID:  domain.NewID(domain.PrefixWallet),
		Type:      domain.IntentFunding,
		Direction: domain.DirectionCredit,
		Amount:    decimal.RequireFromString("10.00"),
		Status:    domain.IntentCreated,
		Reference: domain.NewID(domain.PrefixFundingRef),
	}
	require.NoError(t, s.InsertIntent(ctx, intent))

	require.NoError(t, s.UpdateIntentStatus(ctx, intent.ID, domain.IntentCreated, domain.IntentProcessing))

	err := s.UpdateIntentStatus(ctx, intent.ID, domain.IntentCreated, domain.IntentProcessing)
	assert.ErrorIs(t, err, store.ErrStale, "transitions only move forward from the expected state")

	err = s.UpdateIntentStatus(ctx, intent.ID, domain.IntentSettled, domain.IntentProcessing)
	assert.ErrorIs(t, err, store.ErrStale)
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	user := &domain.User{ID: "usr-1", Email: "dup@example.com", Status: domain.UserActive}
	require.NoError(t, s.InsertUser(ctx, user))
	err := s.InsertUser(ctx, &domain.User{ID: "usr-2", Email: "dup@example.com", Status: domain.UserActive})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	rec := &domain.IdempotencyKeyRecord{ID: "idk-1", Key: "key-1", Status: domain.IdempotencyProcessing}
	require.NoError(t, s.InsertIdempotencyKey(ctx, rec))
	err = s.InsertIdempotencyKey(ctx, &domain.IdempotencyKeyRecord{ID: "idk-2", Key: "key-1", Status: domain.IdempotencyProcessing})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestIntentsWithoutIdempotencyKeyDoNotConflict(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	for i := 0; i < 2; i++ {
		err := s.InsertIntent(ctx, &domain.TransactionIntent{
			ID:        domain.NewID(domain.PrefixIntent),
			WalletID:  domain.NewID(domain.PrefixWallet),
			Type:      domain.IntentFunding,
			Direction: domain.DirectionCredit,
			Amount:    decimal.RequireFromString("10.00"),
			Status:    domain.IntentCreated,
			Reference: domain.NewID(domain.PrefixFundingRef),
		})
		require.NoError(t, err)
	}
}

func TestGetMissingRows(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := s.GetUser(ctx, "usr-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetWallet(ctx, "wal-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetIntent(ctx, "txn-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetIdempotencyKey(ctx, "key-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
