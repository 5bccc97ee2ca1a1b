package engine

import (
	"context"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type TransferParams struct {
	SenderWalletID   string `json:"sender_wallet_id"`
	ReceiverWalletID string `json:"receiver_wallet_id"`
	Amount           string `json:"amount"`
	IdempotencyKey   string `json:"-"`
}

type TransferResult struct {
	TransferID          string                 `json:"transfer_id"`
	TransactionIntentID string                 `json:"transaction_intent_id"`
	SenderWalletID      string                 `json:"sender_wallet_id"`
	ReceiverWalletID    string                 `json:"receiver_wallet_id"`
	Amount              string                 `json:"amount"`
	Status              domain.OperationStatus `json:"status"`
	Reference           string                 `json:"reference"`
}

// Transfer moves value between two wallets of the same currency. An
// insufficient sender balance commits a failed intent rather than rolling
// back, so the rejection is visible in the transaction history.
func (e *Engine) Transfer(ctx context.Context, p TransferParams) (*TransferResult, error) {
	amount, err := money.ParseAmount(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.SenderWalletID == p.ReceiverWalletID {
		return nil, fmt.Errorf("%w: sender and receiver wallets must differ", domain.ErrValidation)
	}

	sender, err := e.allowedWallet(ctx, e.store, p.SenderWalletID)
	if err != nil {
		return nil, err
	}
	receiver, err := e.allowedWallet(ctx, e.store, p.ReceiverWalletID)
	if err != nil {
		return nil, err
	}
	if sender.Currency != receiver.Currency {
		return nil, fmt.Errorf("%w: wallets hold different currencies", domain.ErrValidation)
	}

	intent := &domain.TransactionIntent{
		ID:             domain.NewID(domain.PrefixIntent),
		WalletID:       p.SenderWalletID,
		Type:           domain.IntentTransfer,
		Direction:      domain.DirectionInternal,
		Amount:         amount,
		Status:         domain.IntentCreated,
		Reference:      domain.NewID(domain.PrefixTransferRef),
		IdempotencyKey: p.IdempotencyKey,
		Metadata: domain.IntentMetadata{Transfer: &domain.TransferMetadata{
			SenderWalletID:   p.SenderWalletID,
			ReceiverWalletID: p.ReceiverWalletID,
		}},
	}
	tr := &domain.Transfer{
		ID:                  domain.NewID(domain.PrefixTransfer),
		SenderWalletID:      p.SenderWalletID,
		ReceiverWalletID:    p.ReceiverWalletID,
		Amount:              amount,
		Status:              domain.OperationPending,
		Reference:           intent.Reference,
		TransactionIntentID: intent.ID,
	}

	var result *TransferResult
	err = e.store.WithinTx(ctx, func(q store.Querier) error {
		if err := e.createIntent(ctx, q, intent, map[string]any{
			"amount":             money.String(amount),
			"reference":          intent.Reference,
			"sender_wallet_id":   p.SenderWalletID,
			"receiver_wallet_id": p.ReceiverWalletID,
		}); err != nil {
			return err
		}
		if err := q.InsertTransfer(ctx, tr); err != nil {
			return err
		}
		if err := q.UpdateIntentStatus(ctx, intent.ID, domain.IntentCreated, domain.IntentProcessing); err != nil {
			return err
		}

		result, err = e.settleTransfer(ctx, q, intent, tr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settleTransfer drives a processing transfer intent to its terminal state.
// Balances lock in wallet-id order regardless of transfer direction.
func (e *Engine) settleTransfer(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, tr *domain.Transfer) (*TransferResult, error) {
	balances := make(map[string]*domain.Balance, 2)
	for _, id := range sortedPair(tr.SenderWalletID, tr.ReceiverWalletID) {
		bal, err := e.ledger.GetOrCreate(ctx, q, id)
		if err != nil {
			return nil, err
		}
		balances[id] = bal
	}

	if balances[tr.SenderWalletID].Available.LessThan(tr.Amount) {
		if err := q.UpdateTransferStatus(ctx, tr.ID, domain.OperationFailed); err != nil {
			return nil, err
		}
		if err := e.failIntent(ctx, q, intent, "Insufficient funds", map[string]any{
			"sender_wallet_id": tr.SenderWalletID,
			"amount":           money.String(tr.Amount),
		}); err != nil {
			return nil, err
		}
		return e.transferResult(tr, intent, domain.OperationFailed), nil
	}

	debit, err := e.ledger.Apply(ctx, q, balances[tr.SenderWalletID], intent.ID, domain.EntryDebit, tr.Amount)
	if err != nil {
		return nil, err
	}
	credit, err := e.ledger.Apply(ctx, q, balances[tr.ReceiverWalletID], intent.ID, domain.EntryCredit, tr.Amount)
	if err != nil {
		return nil, err
	}

	if err := q.UpdateTransferStatus(ctx, tr.ID, domain.OperationSuccess); err != nil {
		return nil, err
	}
	if err := e.settleIntent(ctx, q, intent, []string{debit.ID, credit.ID}); err != nil {
		return nil, err
	}
	return e.transferResult(tr, intent, domain.OperationSuccess), nil
}

func (e *Engine) transferResult(tr *domain.Transfer, intent *domain.TransactionIntent, status domain.OperationStatus) *TransferResult {
	return &TransferResult{
		TransferID:          tr.ID,
		TransactionIntentID: intent.ID,
		SenderWalletID:      tr.SenderWalletID,
		ReceiverWalletID:    tr.ReceiverWalletID,
		Amount:              money.String(tr.Amount),
		Status:              status,
		Reference:           tr.Reference,
	}
}
