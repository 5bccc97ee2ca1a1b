package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
)

const ledgerEntryColumns = `id, wallet_id, transaction_intent_id, entry_type, amount::text, balance_before::text, balance_after::text, created_at`

func (q *pgQuerier) InsertLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO ledger_entries (id, wallet_id, transaction_intent_id, entry_type, amount, balance_before, balance_after)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.WalletID, e.TransactionIntentID, e.EntryType,
		e.Amount.StringFixed(2), e.BalanceBefore.StringFixed(2), e.BalanceAfter.StringFixed(2))
	return mapInsertErr(err)
}

func (q *pgQuerier) ListLedgerEntriesByWallet(ctx context.Context, walletID string) ([]domain.LedgerEntry, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+ledgerEntryColumns+` FROM ledger_entries WHERE wallet_id = $1 ORDER BY created_at DESC`,
		walletID)
	if err != nil {
		return nil, err
	}
	return collectLedgerEntries(rows)
}

func (q *pgQuerier) ListLedgerEntriesByIntent(ctx context.Context, intentID string) ([]domain.LedgerEntry, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+ledgerEntryColumns+` FROM ledger_entries WHERE transaction_intent_id = $1 ORDER BY created_at`,
		intentID)
	if err != nil {
		return nil, err
	}
	return collectLedgerEntries(rows)
}

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e                     domain.LedgerEntry
			amount, before, after string
		)
		if err := rows.Scan(&e.ID, &e.WalletID, &e.TransactionIntentID, &e.EntryType,
			&amount, &before, &after, &e.CreatedAt); err != nil {
			return nil, err
		}
		var err error
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid ledger entry amount: %w", err)
		}
		if e.BalanceBefore, err = decimal.NewFromString(before); err != nil {
			return nil, fmt.Errorf("invalid ledger entry balance_before: %w", err)
		}
		if e.BalanceAfter, err = decimal.NewFromString(after); err != nil {
			return nil, fmt.Errorf("invalid ledger entry balance_after: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
