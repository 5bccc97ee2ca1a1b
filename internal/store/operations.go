package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
)

func (q *pgQuerier) InsertFunding(ctx context.Context, f *domain.Funding) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO fundings (id, wallet_id, amount, status, reference, provider, transaction_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.WalletID, f.Amount.StringFixed(2), f.Status, f.Reference, f.Provider, f.TransactionIntentID)
	return mapInsertErr(err)
}

func (q *pgQuerier) GetFundingByIntent(ctx context.Context, intentID string) (*domain.Funding, error) {
	var (
		f      domain.Funding
		amount string
	)
	err := q.db.QueryRow(ctx,
		`SELECT id, wallet_id, amount::text, status, reference, provider, transaction_intent_id, created_at, updated_at
		 FROM fundings WHERE transaction_intent_id = $1`, intentID).
		Scan(&f.ID, &f.WalletID, &amount, &f.Status, &f.Reference, &f.Provider,
			&f.TransactionIntentID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	if f.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid funding amount: %w", err)
	}
	return &f, nil
}

func (q *pgQuerier) UpdateFundingStatus(ctx context.Context, id string, status domain.OperationStatus) error {
	_, err := q.db.Exec(ctx,
		`UPDATE fundings SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (q *pgQuerier) InsertTransfer(ctx context.Context, t *domain.Transfer) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO transfers (id, sender_wallet_id, receiver_wallet_id, amount, status, reference, transaction_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.SenderWalletID, t.ReceiverWalletID, t.Amount.StringFixed(2), t.Status, t.Reference, t.TransactionIntentID)
	return mapInsertErr(err)
}

func (q *pgQuerier) GetTransferByIntent(ctx context.Context, intentID string) (*domain.Transfer, error) {
	var (
		t      domain.Transfer
		amount string
	)
	err := q.db.QueryRow(ctx,
		`SELECT id, sender_wallet_id, receiver_wallet_id, amount::text, status, reference, transaction_intent_id, created_at, updated_at
		 FROM transfers WHERE transaction_intent_id = $1`, intentID).
		Scan(&t.ID, &t.SenderWalletID, &t.ReceiverWalletID, &amount, &t.Status,
			&t.Reference, &t.TransactionIntentID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid transfer amount: %w", err)
	}
	return &t, nil
}

func (q *pgQuerier) UpdateTransferStatus(ctx context.Context, id string, status domain.OperationStatus) error {
	_, err := q.db.Exec(ctx,
		`UPDATE transfers SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (q *pgQuerier) InsertWithdrawal(ctx context.Context, w *domain.Withdrawal) error {
	destination, err := json.Marshal(w.Destination)
	if err != nil {
		return fmt.Errorf("encoding withdrawal destination: %w", err)
	}
	_, err = q.db.Exec(ctx,
		`INSERT INTO withdrawals (id, wallet_id, amount, status, reference, destination, transaction_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.WalletID, w.Amount.StringFixed(2), w.Status, w.Reference, destination, w.TransactionIntentID)
	return mapInsertErr(err)
}

func (q *pgQuerier) GetWithdrawalByIntent(ctx context.Context, intentID string) (*domain.Withdrawal, error) {
	var (
		w           domain.Withdrawal
		amount      string
		destination []byte
	)
	err := q.db.QueryRow(ctx,
		`SELECT id, wallet_id, amount::text, status, reference, destination, transaction_intent_id, created_at, updated_at
		 FROM withdrawals WHERE transaction_intent_id = $1`, intentID).
		Scan(&w.ID, &w.WalletID, &amount, &w.Status, &w.Reference, &destination,
			&w.TransactionIntentID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	if w.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid withdrawal amount: %w", err)
	}
	if err := json.Unmarshal(destination, &w.Destination); err != nil {
		return nil, fmt.Errorf("decoding withdrawal destination: %w", err)
	}
	return &w, nil
}

func (q *pgQuerier) UpdateWithdrawalStatus(ctx context.Context, id string, status domain.OperationStatus) error {
	_, err := q.db.Exec(ctx,
		`UPDATE withdrawals SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}
