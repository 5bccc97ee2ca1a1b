package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
)

// GetBalanceForUpdate reads a wallet's balance row and, when running inside a
// transaction, takes a row lock so concurrent settlements against the same
// wallet serialize at the database.
func (q *pgQuerier) GetBalanceForUpdate(ctx context.Context, walletID string) (*domain.Balance, error) {
	var (
		b                  domain.Balance
		available, pending string
	)
	err := q.db.QueryRow(ctx,
		`SELECT id, wallet_id, available_balance::text, pending_balance::text, created_at, updated_at
		 FROM balances WHERE wallet_id = $1 FOR UPDATE`, walletID).
		Scan(&b.ID, &b.WalletID, &available, &pending, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapScanErr(err)
	}
	if b.Available, err = decimal.NewFromString(available); err != nil {
		return nil, fmt.Errorf("invalid available balance for wallet %s: %w", walletID, err)
	}
	if b.Pending, err = decimal.NewFromString(pending); err != nil {
		return nil, fmt.Errorf("invalid pending balance for wallet %s: %w", walletID, err)
	}
	return &b, nil
}

func (q *pgQuerier) InsertBalance(ctx context.Context, b *domain.Balance) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO balances (id, wallet_id, available_balance, pending_balance)
		 VALUES ($1, $2, $3, $4)`,
		b.ID, b.WalletID, b.Available.StringFixed(2), b.Pending.StringFixed(2))
	return mapInsertErr(err)
}

// UpdateAvailableBalance writes the new balance only if the stored value still
// equals before, so a concurrent mutation surfaces as ErrStale instead of a
// lost update.
func (q *pgQuerier) UpdateAvailableBalance(ctx context.Context, walletID string, before, after decimal.Decimal) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE balances SET available_balance = $1, updated_at = now()
		 WHERE wallet_id = $2 AND available_balance = $3`,
		after.StringFixed(2), walletID, before.StringFixed(2))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: balance of wallet %s changed concurrently", ErrStale, walletID)
	}
	return nil
}
