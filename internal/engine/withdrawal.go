package engine

import (
	"context"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type WithdrawParams struct {
	WalletID       string             `json:"wallet_id"`
	Amount         string             `json:"amount"`
	Destination    domain.BankDetails `json:"destination"`
	IdempotencyKey string             `json:"-"`
}

type WithdrawalResult struct {
	WithdrawalID        string                 `json:"withdrawal_id"`
	TransactionIntentID string                 `json:"transaction_intent_id"`
	WalletID            string                 `json:"wallet_id"`
	Amount              string                 `json:"amount"`
	Status              domain.OperationStatus `json:"status"`
	Reference           string                 `json:"reference"`
	Destination         domain.BankDetails     `json:"destination"`
}

// Withdraw debits a wallet toward an external bank account, crediting the
// clearing wallet for the currency. Insufficient funds commit a failed
// intent, same as transfers.
func (e *Engine) Withdraw(ctx context.Context, p WithdrawParams) (*WithdrawalResult, error) {
	amount, err := money.ParseAmount(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.Destination.BankAccountNumber == "" || p.Destination.BankCode == "" {
		return nil, fmt.Errorf("%w: destination bank account number and bank code are required", domain.ErrValidation)
	}

	wallet, err := e.allowedWallet(ctx, e.store, p.WalletID)
	if err != nil {
		return nil, err
	}

	intent := &domain.TransactionIntent{
		ID:             domain.NewID(domain.PrefixIntent),
		WalletID:       p.WalletID,
		Type:           domain.IntentWithdrawal,
		Direction:      domain.DirectionDebit,
		Amount:         amount,
		Status:         domain.IntentCreated,
		Reference:      domain.NewID(domain.PrefixWithdrawalRef),
		IdempotencyKey: p.IdempotencyKey,
		Metadata:       domain.IntentMetadata{Withdrawal: &domain.WithdrawalMetadata{Destination: p.Destination}},
	}
	wd := &domain.Withdrawal{
		ID:                  domain.NewID(domain.PrefixWithdrawal),
		WalletID:            p.WalletID,
		Amount:              amount,
		Status:              domain.OperationPending,
		Reference:           intent.Reference,
		Destination:         p.Destination,
		TransactionIntentID: intent.ID,
	}

	var result *WithdrawalResult
	err = e.store.WithinTx(ctx, func(q store.Querier) error {
		if err := e.createIntent(ctx, q, intent, map[string]any{
			"amount":    money.String(amount),
			"reference": intent.Reference,
			"wallet_id": p.WalletID,
		}); err != nil {
			return err
		}
		if err := q.InsertWithdrawal(ctx, wd); err != nil {
			return err
		}
		if err := q.UpdateIntentStatus(ctx, intent.ID, domain.IntentCreated, domain.IntentProcessing); err != nil {
			return err
		}

		result, err = e.settleWithdrawal(ctx, q, intent, wd, wallet.Currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settleWithdrawal drives a processing withdrawal intent to its terminal
// state: debit the wallet, credit the currency's clearing wallet.
func (e *Engine) settleWithdrawal(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, wd *domain.Withdrawal, currency string) (*WithdrawalResult, error) {
	clearingID, err := e.clearing.Resolve(ctx, q, currency)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]*domain.Balance, 2)
	for _, id := range sortedPair(wd.WalletID, clearingID) {
		bal, err := e.ledger.GetOrCreate(ctx, q, id)
		if err != nil {
			return nil, err
		}
		balances[id] = bal
	}

	if balances[wd.WalletID].Available.LessThan(wd.Amount) {
		if err := q.UpdateWithdrawalStatus(ctx, wd.ID, domain.OperationFailed); err != nil {
			return nil, err
		}
		if err := e.failIntent(ctx, q, intent, "Insufficient funds", map[string]any{
			"wallet_id": wd.WalletID,
			"amount":    money.String(wd.Amount),
		}); err != nil {
			return nil, err
		}
		return e.withdrawalResult(wd, intent, domain.OperationFailed), nil
	}

	debit, err := e.ledger.Apply(ctx, q, balances[wd.WalletID], intent.ID, domain.EntryDebit, wd.Amount)
	if err != nil {
		return nil, err
	}
	credit, err := e.ledger.Apply(ctx, q, balances[clearingID], intent.ID, domain.EntryCredit, wd.Amount)
	if err != nil {
		return nil, err
	}

	if err := q.UpdateWithdrawalStatus(ctx, wd.ID, domain.OperationSuccess); err != nil {
		return nil, err
	}
	if err := e.settleIntent(ctx, q, intent, []string{debit.ID, credit.ID}); err != nil {
		return nil, err
	}
	return e.withdrawalResult(wd, intent, domain.OperationSuccess), nil
}

func (e *Engine) withdrawalResult(wd *domain.Withdrawal, intent *domain.TransactionIntent, status domain.OperationStatus) *WithdrawalResult {
	return &WithdrawalResult{
		WithdrawalID:        wd.ID,
		TransactionIntentID: intent.ID,
		WalletID:            wd.WalletID,
		Amount:              money.String(wd.Amount),
		Status:              status,
		Reference:           wd.Reference,
		Destination:         wd.Destination,
	}
}
