package store

import (
	"context"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
)

func (q *pgQuerier) GetIdempotencyKey(ctx context.Context, key string) (*domain.IdempotencyKeyRecord, error) {
	var (
		rec     domain.IdempotencyKeyRecord
		payload []byte
	)
	err := q.db.QueryRow(ctx,
		`SELECT id, idempotency_key, request_hash, status, response_payload, created_at, updated_at
		 FROM idempotency_keys WHERE idempotency_key = $1`, key).
		Scan(&rec.ID, &rec.Key, &rec.RequestHash, &rec.Status, &payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	rec.ResponsePayload = payload
	return &rec, nil
}

// InsertIdempotencyKey is the atomic reservation step: the unique constraint
// on idempotency_key turns a concurrent duplicate into ErrDuplicate.
func (q *pgQuerier) InsertIdempotencyKey(ctx context.Context, rec *domain.IdempotencyKeyRecord) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO idempotency_keys (id, idempotency_key, request_hash, status)
		 VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Key, rec.RequestHash, rec.Status)
	return mapInsertErr(err)
}

func (q *pgQuerier) UpdateIdempotencyKey(ctx context.Context, key string, status domain.IdempotencyStatus, payload []byte) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE idempotency_keys SET status = $1, response_payload = $2, updated_at = now()
		 WHERE idempotency_key = $3`,
		status, payload, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: idempotency key %s", ErrNotFound, key)
	}
	return nil
}
