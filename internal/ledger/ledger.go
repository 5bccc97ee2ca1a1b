// Package ledger is the only mutator of wallet balances. Every movement
// writes a ledger entry with before/after snapshots and updates the balance
// through an atomic conditional update, always inside the caller's
// settlement transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/audit"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type Ledger struct {
	audit *audit.Recorder
}

func New(a *audit.Recorder) *Ledger {
	return &Ledger{audit: a}
}

// GetOrCreate returns the wallet's balance row, creating a zeroed one on
// first use. Runs on the caller's transaction, so two concurrent first uses
// are arbitrated by the unique wallet_id constraint.
func (l *Ledger) GetOrCreate(ctx context.Context, q store.Querier, walletID string) (*domain.Balance, error) {
	bal, err := q.GetBalanceForUpdate(ctx, walletID)
	if err == nil {
		return bal, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	bal = &domain.Balance{
		ID:        domain.NewID(domain.PrefixBalance),
		WalletID:  walletID,
		Available: money.Zero(),
		Pending:   money.Zero(),
	}
	if err := q.InsertBalance(ctx, bal); err != nil {
		return nil, fmt.Errorf("creating balance for wallet %s: %w", walletID, err)
	}
	return bal, nil
}

// Apply moves amount through bal in the direction given by entryType: a
// credit raises the available balance, a debit lowers it. Rounding to two
// places happens at this step, not just at the end of the settlement. The
// ledger entry, the conditional balance update, and their audit records all
// ride the caller's transaction. bal is updated in place on success.
func (l *Ledger) Apply(ctx context.Context, q store.Querier, bal *domain.Balance, intentID string, entryType domain.EntryType, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	before := bal.Available
	var after decimal.Decimal
	if entryType == domain.EntryCredit {
		after = money.Add(before, amount)
	} else {
		after = money.Sub(before, amount)
	}

	entry := &domain.LedgerEntry{
		ID:                  domain.NewID(domain.PrefixLedgerEntry),
		WalletID:            bal.WalletID,
		TransactionIntentID: intentID,
		EntryType:           entryType,
		Amount:              amount,
		BalanceBefore:       before,
		BalanceAfter:        after,
	}
	if err := q.InsertLedgerEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("ledger entry insert failed: %w", err)
	}

	if err := l.audit.Record(ctx, q, audit.SystemLog(domain.EntityLedgerEntry, entry.ID, domain.ActionCreateLedgerEntry, map[string]any{
		"wallet_id":             bal.WalletID,
		"entry_type":            entryType,
		"amount":                money.String(amount),
		"transaction_intent_id": intentID,
	})); err != nil {
		return nil, err
	}

	if err := q.UpdateAvailableBalance(ctx, bal.WalletID, before, after); err != nil {
		return nil, fmt.Errorf("balance update failed: %w", err)
	}

	change := after.Sub(before)
	if err := l.audit.Record(ctx, q, audit.SystemLog(domain.EntityBalance, bal.ID, domain.ActionUpdateBalance, map[string]any{
		"wallet_id":                bal.WalletID,
		"available_balance_before": money.String(before),
		"available_balance_after":  money.String(after),
		"change":                   money.String(change),
	})); err != nil {
		return nil, err
	}

	bal.Available = after
	return entry, nil
}
