// Package idempotency guarantees exactly-once execution under client
// retries. Requests are deduplicated by key plus request fingerprint, with
// terminal responses cached for replay.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/store"
)

type Coordinator struct {
	store store.Store
}

func NewCoordinator(s store.Store) *Coordinator {
	return &Coordinator{store: s}
}

// BeginResult reports what Begin decided. When Replay is true the caller must
// return Payload verbatim and skip business logic entirely.
type BeginResult struct {
	Replay  bool
	Status  domain.IdempotencyStatus
	Payload json.RawMessage
}

// Begin reserves the key before any business logic runs. Outcomes:
//
//   - no prior record: a processing record is inserted atomically (the unique
//     constraint arbitrates concurrent callers) and the caller proceeds;
//   - prior terminal record with the same fingerprint: replay;
//   - prior processing record with the same fingerprint: ErrInProgress;
//   - prior record with a different fingerprint: ErrConflict.
func (c *Coordinator) Begin(ctx context.Context, key, fingerprint string) (*BeginResult, error) {
	rec, err := c.store.GetIdempotencyKey(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	if rec != nil {
		if rec.RequestHash != "" && rec.RequestHash != fingerprint {
			return nil, fmt.Errorf("%w: idempotency key reused with a different payload", domain.ErrConflict)
		}
		if rec.Status == domain.IdempotencyProcessing && rec.ResponsePayload == nil {
			return nil, domain.ErrInProgress
		}
		return &BeginResult{Replay: true, Status: rec.Status, Payload: rec.ResponsePayload}, nil
	}

	rec = &domain.IdempotencyKeyRecord{
		ID:          domain.NewID(domain.PrefixIdempotencyKey),
		Key:         key,
		RequestHash: fingerprint,
		Status:      domain.IdempotencyProcessing,
	}
	if err := c.store.InsertIdempotencyKey(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the insert race: the other caller holds the reservation.
			return nil, domain.ErrInProgress
		}
		return nil, fmt.Errorf("idempotency reservation failed: %w", err)
	}
	return &BeginResult{}, nil
}

// Finish flips the record to a terminal status and stores the response for
// replay. The write-back is best effort: a failure here is logged, never
// propagated, so the business result always reaches the caller.
func (c *Coordinator) Finish(ctx context.Context, key string, status domain.IdempotencyStatus, payload []byte) {
	if key == "" {
		return
	}
	if err := c.store.UpdateIdempotencyKey(ctx, key, status, payload); err != nil {
		log.Printf("idempotency: saving response for key %s failed: %v", key, err)
	}
}
