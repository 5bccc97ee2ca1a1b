package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
)

func (q *pgQuerier) InsertExecutionAttempt(ctx context.Context, a *domain.ExecutionAttempt) error {
	var payload []byte
	if a.ResponsePayload != nil {
		var err error
		if payload, err = json.Marshal(a.ResponsePayload); err != nil {
			return fmt.Errorf("encoding attempt payload: %w", err)
		}
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO execution_attempts (id, transaction_intent_id, status, attempt_number, provider, provider_reference, response_payload)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		a.ID, a.TransactionIntentID, a.Status, a.AttemptNumber, a.Provider, a.ProviderReference, payload)
	return mapInsertErr(err)
}

func (q *pgQuerier) ListExecutionAttemptsByIntent(ctx context.Context, intentID string) ([]domain.ExecutionAttempt, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, transaction_intent_id, status, attempt_number, provider, COALESCE(provider_reference, ''), response_payload, attempted_at
		 FROM execution_attempts WHERE transaction_intent_id = $1 ORDER BY attempted_at DESC`,
		intentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []domain.ExecutionAttempt
	for rows.Next() {
		var (
			a       domain.ExecutionAttempt
			payload []byte
		)
		if err := rows.Scan(&a.ID, &a.TransactionIntentID, &a.Status, &a.AttemptNumber,
			&a.Provider, &a.ProviderReference, &payload, &a.AttemptedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &a.ResponsePayload); err != nil {
				return nil, fmt.Errorf("decoding attempt payload: %w", err)
			}
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
