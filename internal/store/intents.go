package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
)

func (q *pgQuerier) InsertIntent(ctx context.Context, in *domain.TransactionIntent) error {
	metadata, err := json.Marshal(in.Metadata)
	if err != nil {
		return fmt.Errorf("encoding intent metadata: %w", err)
	}
	_, err = q.db.Exec(ctx,
		`INSERT INTO transaction_intents
		 (id, wallet_id, type, direction, amount, status, reference, idempotency_key, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`,
		in.ID, in.WalletID, in.Type, in.Direction, in.Amount.StringFixed(2),
		in.Status, in.Reference, in.IdempotencyKey, metadata)
	return mapInsertErr(err)
}

func (q *pgQuerier) GetIntent(ctx context.Context, id string) (*domain.TransactionIntent, error) {
	var (
		in       domain.TransactionIntent
		amount   string
		metadata []byte
	)
	err := q.db.QueryRow(ctx,
		`SELECT id, wallet_id, type, direction, amount::text, status, reference, COALESCE(idempotency_key, ''), metadata, created_at, updated_at
		 FROM transaction_intents WHERE id = $1`, id).
		Scan(&in.ID, &in.WalletID, &in.Type, &in.Direction, &amount, &in.Status,
			&in.Reference, &in.IdempotencyKey, &metadata, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	if in.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid intent amount: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &in.Metadata); err != nil {
			return nil, fmt.Errorf("decoding intent metadata: %w", err)
		}
	}
	return &in, nil
}

// UpdateIntentStatus moves an intent forward. The WHERE clause on the current
// status is what keeps transitions monotonic under concurrency.
func (q *pgQuerier) UpdateIntentStatus(ctx context.Context, id string, from, to domain.IntentStatus) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE transaction_intents SET status = $1, updated_at = now()
		 WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: intent %s is not %s", ErrStale, id, from)
	}
	return nil
}
