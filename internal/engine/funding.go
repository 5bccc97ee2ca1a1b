package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type FundParams struct {
	WalletID       string `json:"wallet_id"`
	Amount         string `json:"amount"`
	Provider       string `json:"provider"`
	IdempotencyKey string `json:"-"`
}

type FundingResult struct {
	FundingID           string                 `json:"funding_id"`
	TransactionIntentID string                 `json:"transaction_intent_id"`
	WalletID            string                 `json:"wallet_id"`
	Amount              string                 `json:"amount"`
	Status              domain.OperationStatus `json:"status"`
	Reference           string                 `json:"reference"`
	Provider            string                 `json:"provider"`
}

// Fund settles an external credit into a wallet. The intent, funding record,
// provider attempt, ledger pair, and audit trail all commit or roll back as
// one transaction. A provider rejection still commits, as a failed intent.
func (e *Engine) Fund(ctx context.Context, p FundParams) (*FundingResult, error) {
	amount, err := money.ParseAmount(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.Provider == "" {
		return nil, fmt.Errorf("%w: provider is required", domain.ErrValidation)
	}

	if _, err := e.allowedWallet(ctx, e.store, p.WalletID); err != nil {
		return nil, err
	}

	intent := &domain.TransactionIntent{
		ID:             domain.NewID(domain.PrefixIntent),
		WalletID:       p.WalletID,
		Type:           domain.IntentFunding,
		Direction:      domain.DirectionCredit,
		Amount:         amount,
		Status:         domain.IntentCreated,
		Reference:      domain.NewID(domain.PrefixFundingRef),
		IdempotencyKey: p.IdempotencyKey,
		Metadata:       domain.IntentMetadata{Funding: &domain.FundingMetadata{Provider: p.Provider}},
	}
	fund := &domain.Funding{
		ID:                  domain.NewID(domain.PrefixFunding),
		WalletID:            p.WalletID,
		Amount:              amount,
		Status:              domain.OperationPending,
		Reference:           intent.Reference,
		Provider:            p.Provider,
		TransactionIntentID: intent.ID,
	}

	var result *FundingResult
	err = e.store.WithinTx(ctx, func(q store.Querier) error {
		if err := e.createIntent(ctx, q, intent, map[string]any{
			"amount":    money.String(amount),
			"reference": intent.Reference,
			"wallet_id": p.WalletID,
		}); err != nil {
			return err
		}
		if err := q.InsertFunding(ctx, fund); err != nil {
			return err
		}
		if err := q.UpdateIntentStatus(ctx, intent.ID, domain.IntentCreated, domain.IntentProcessing); err != nil {
			return err
		}

		wallet, err := q.GetWallet(ctx, p.WalletID)
		if err != nil {
			return err
		}
		result, err = e.settleFunding(ctx, q, intent, fund, wallet, 1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settleFunding drives a processing funding intent to its terminal state:
// call the provider, record the attempt, and either post the ledger pair or
// fail the intent.
func (e *Engine) settleFunding(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, fund *domain.Funding, wallet *domain.Wallet, attemptNumber int) (*FundingResult, error) {
	res := e.processor.Process(ctx, fund.Provider, fund.Reference)

	attempt := &domain.ExecutionAttempt{
		ID:                  domain.NewID(domain.PrefixExecutionAttempt),
		TransactionIntentID: intent.ID,
		AttemptNumber:       attemptNumber,
		Provider:            fund.Provider,
		ProviderReference:   res.Reference,
		ResponsePayload:     map[string]any{"success": res.Success, "message": res.Message},
	}
	if res.Success {
		attempt.Status = domain.ExecutionSuccess
	} else {
		attempt.Status = domain.ExecutionFailed
	}
	if err := q.InsertExecutionAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	if !res.Success {
		if err := q.UpdateFundingStatus(ctx, fund.ID, domain.OperationFailed); err != nil {
			return nil, err
		}
		if err := e.failIntent(ctx, q, intent, "Processor failed", map[string]any{
			"provider": fund.Provider,
			"message":  res.Message,
		}); err != nil {
			return nil, err
		}
		return e.fundingResult(fund, intent, domain.OperationFailed), nil
	}

	clearingID, err := e.clearing.Resolve(ctx, q, wallet.Currency)
	if err != nil {
		return nil, err
	}

	entryIDs, err := e.moveFunds(ctx, q, intent, clearingID, fund.WalletID, fund.Amount)
	if err != nil {
		return nil, err
	}
	if err := q.UpdateFundingStatus(ctx, fund.ID, domain.OperationSuccess); err != nil {
		return nil, err
	}
	if err := e.settleIntent(ctx, q, intent, entryIDs); err != nil {
		return nil, err
	}
	return e.fundingResult(fund, intent, domain.OperationSuccess), nil
}

// moveFunds posts the balanced ledger pair for an intent: debit from, credit
// to. Balances are locked in wallet-id order so concurrent settlements that
// touch the same pair cannot deadlock.
func (e *Engine) moveFunds(ctx context.Context, q store.Querier, intent *domain.TransactionIntent, fromWalletID, toWalletID string, amount decimal.Decimal) ([]string, error) {
	balances := make(map[string]*domain.Balance, 2)
	for _, id := range sortedPair(fromWalletID, toWalletID) {
		bal, err := e.ledger.GetOrCreate(ctx, q, id)
		if err != nil {
			return nil, err
		}
		balances[id] = bal
	}

	debit, err := e.ledger.Apply(ctx, q, balances[fromWalletID], intent.ID, domain.EntryDebit, amount)
	if err != nil {
		return nil, err
	}
	credit, err := e.ledger.Apply(ctx, q, balances[toWalletID], intent.ID, domain.EntryCredit, amount)
	if err != nil {
		return nil, err
	}
	return []string{debit.ID, credit.ID}, nil
}

func sortedPair(a, b string) [2]string {
	if a > b {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

func (e *Engine) fundingResult(fund *domain.Funding, intent *domain.TransactionIntent, status domain.OperationStatus) *FundingResult {
	return &FundingResult{
		FundingID:           fund.ID,
		TransactionIntentID: intent.ID,
		WalletID:            fund.WalletID,
		Amount:              money.String(fund.Amount),
		Status:              status,
		Reference:           fund.Reference,
		Provider:            fund.Provider,
	}
}
