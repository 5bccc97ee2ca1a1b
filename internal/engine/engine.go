// Package engine is the transaction intent settlement engine: it turns a
// client-submitted monetary operation into a settled or failed intent with
// balanced ledger entries, inside one database transaction.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tonife/walletcore/internal/audit"
	"github.com/tonife/walletcore/internal/clearing"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/ledger"
	"github.com/tonife/walletcore/internal/processor"
	"github.com/tonife/walletcore/internal/store"
)

var settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wallet_settlements_total",
	Help: "Settlements processed, labeled by intent type and outcome",
}, []string{"type", "outcome"})

type Engine struct {
	store     store.Store
	ledger    *ledger.Ledger
	clearing  *clearing.Resolver
	audit     *audit.Recorder
	processor processor.Processor
}

func New(s store.Store, l *ledger.Ledger, c *clearing.Resolver, a *audit.Recorder, p processor.Processor) *Engine {
	return &Engine{store: s, ledger: l, clearing: c, audit: a, processor: p}
}

// allowedWallet loads a wallet and verifies its owner may transact.
func (e *Engine) allowedWallet(ctx context.Context, q store.Querier, walletID string) (*domain.Wallet, error) {
	wallet, err := q.GetWallet(ctx, walletID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: wallet %s", domain.ErrNotFound, walletID)
	}
	if err != nil {
		return nil, err
	}

	user, err := q.GetUser(ctx, wallet.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, wallet.UserID)
	}
	if err != nil {
		return nil, err
	}
	if user.Status == domain.UserBlacklisted {
		return nil, fmt.Errorf("%w: user is blacklisted", domain.ErrForbidden)
	}
	return wallet, nil
}

// failIntent moves a processing intent to its failed terminal state and
// records the reason. The caller commits: a failed outcome is an auditable
// fact, not a rolled-back no-op.
func (e *Engine) failIntent(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, reason string, metadata map[string]any) error {
	if err := q.UpdateIntentStatus(ctx, intent.ID, domain.IntentProcessing, domain.IntentFailed); err != nil {
		return err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["reason"] = reason
	if err := e.audit.Record(ctx, q, audit.SystemLog(domain.EntityTransactionIntent, intent.ID, domain.ActionTxnFailed, metadata)); err != nil {
		return err
	}
	settlementsTotal.WithLabelValues(string(intent.Type), "failed").Inc()
	return nil
}

// settleIntent moves a processing intent to settled and records the ledger
// entries that back it.
func (e *Engine) settleIntent(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, entryIDs []string) error {
	if err := q.UpdateIntentStatus(ctx, intent.ID, domain.IntentProcessing, domain.IntentSettled); err != nil {
		return err
	}
	if err := e.audit.Record(ctx, q, audit.SystemLog(domain.EntityTransactionIntent, intent.ID, domain.ActionSettleTxn, map[string]any{
		"amount":           intent.Amount.StringFixed(2),
		"reference":        intent.Reference,
		"ledger_entry_ids": entryIDs,
	})); err != nil {
		return err
	}
	settlementsTotal.WithLabelValues(string(intent.Type), "settled").Inc()
	return nil
}

// createIntent inserts the intent in its initial state and writes the
// creation audit entry. A duplicate reference or idempotency key surfaces as
// a conflict.
func (e *Engine) createIntent(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, auditMeta map[string]any) error {
	if err := q.InsertIntent(ctx, intent); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return fmt.Errorf("%w: intent with this reference or idempotency key already exists", domain.ErrConflict)
		}
		return err
	}
	return e.audit.Record(ctx, q, audit.SystemLog(domain.EntityTransactionIntent, intent.ID, domain.ActionCreateIntent, auditMeta))
}
