package idempotency_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/idempotency"
	"github.com/tonife/walletcore/internal/store"
)

func TestBeginReservesKey(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	coord := idempotency.NewCoordinator(s)

	res, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)
	assert.False(t, res.Replay)

	rec, err := s.GetIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IdempotencyProcessing, rec.Status)
	assert.Equal(t, "fp-1", rec.RequestHash)
}

func TestBeginWhileProcessing(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	coord := idempotency.NewCoordinator(s)

	_, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)

	_, err = coord.Begin(ctx, "key-1", "fp-1")
	assert.ErrorIs(t, err, domain.ErrInProgress)
}

func TestBeginReplaysTerminalResponse(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	coord := idempotency.NewCoordinator(s)

	_, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)

	coord.Finish(ctx, "key-1", domain.IdempotencySuccess, []byte(`{"funding_id":"fnd-1"}`))

	res, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)
	assert.True(t, res.Replay)
	assert.Equal(t, domain.IdempotencySuccess, res.Status)
	assert.JSONEq(t, `{"funding_id":"fnd-1"}`, string(res.Payload))
}

func TestBeginReplaysFailedOutcome(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	coord := idempotency.NewCoordinator(s)

	_, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)

	coord.Finish(ctx, "key-1", domain.IdempotencyFailed, []byte(`{"error":"insufficient funds"}`))

	res, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)
	assert.True(t, res.Replay, "failed outcomes are terminal and replay like successes")
	assert.Equal(t, domain.IdempotencyFailed, res.Status)
}

func TestBeginRejectsFingerprintMismatch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	coord := idempotency.NewCoordinator(s)

	_, err := coord.Begin(ctx, "key-1", "fp-1")
	require.NoError(t, err)

	_, err = coord.Begin(ctx, "key-1", "fp-2")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Still conflicts after the first request finishes.
	coord.Finish(ctx, "key-1", domain.IdempotencySuccess, []byte(`{}`))
	_, err = coord.Begin(ctx, "key-1", "fp-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestFinishIsBestEffort(t *testing.T) {
	ctx := context.Background()
	coord := idempotency.NewCoordinator(store.NewMemory())

	// Unknown key: must not panic or propagate.
	coord.Finish(ctx, "never-reserved", domain.IdempotencySuccess, []byte(`{}`))
	coord.Finish(ctx, "", domain.IdempotencySuccess, nil)
}
