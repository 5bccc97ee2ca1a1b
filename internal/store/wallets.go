package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
)

const walletColumns = `id, user_id, currency, account_details, status, created_at, updated_at`

func (q *pgQuerier) scanWallet(row interface{ Scan(dest ...any) error }) (*domain.Wallet, error) {
	var (
		w       domain.Wallet
		details []byte
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Currency, &details, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	if err := json.Unmarshal(details, &w.AccountDetails); err != nil {
		return nil, fmt.Errorf("decoding wallet account details: %w", err)
	}
	return &w, nil
}

func (q *pgQuerier) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return q.scanWallet(q.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id))
}

func (q *pgQuerier) GetWalletByUserAndCurrency(ctx context.Context, userID, currency string) (*domain.Wallet, error) {
	return q.scanWallet(q.db.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 AND currency = $2`, userID, currency))
}

func (q *pgQuerier) InsertWallet(ctx context.Context, w *domain.Wallet) error {
	details, err := json.Marshal(w.AccountDetails)
	if err != nil {
		return fmt.Errorf("encoding wallet account details: %w", err)
	}
	_, err = q.db.Exec(ctx,
		`INSERT INTO wallets (id, user_id, currency, account_details, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.UserID, w.Currency, details, w.Status)
	return mapInsertErr(err)
}
