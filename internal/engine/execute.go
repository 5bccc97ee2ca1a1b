package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/store"
)

// Execute re-drives an intent that was persisted but never advanced past its
// initial state, typically after a crash between creation and settlement. The
// intent must still be in the created state; anything further along already
// ran to a terminal outcome or is being driven by another worker.
func (e *Engine) Execute(ctx context.Context, intentID string, typ domain.IntentType) (any, error) {
	var result any
	err := e.store.WithinTx(ctx, func(q store.Querier) error {
		intent, err := q.GetIntent(ctx, intentID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: transaction intent %s", domain.ErrNotFound, intentID)
		}
		if err != nil {
			return err
		}
		if intent.Type != typ {
			return fmt.Errorf("%w: transaction intent is a %s, not a %s", domain.ErrValidation, intent.Type, typ)
		}
		if intent.Status != domain.IntentCreated {
			return fmt.Errorf("%w: transaction intent is %s and cannot be re-driven", domain.ErrValidation, intent.Status)
		}

		wallet, err := e.allowedWallet(ctx, q, intent.WalletID)
		if err != nil {
			return err
		}
		if err := q.UpdateIntentStatus(ctx, intent.ID, domain.IntentCreated, domain.IntentProcessing); err != nil {
			return err
		}

		switch intent.Type {
		case domain.IntentFunding:
			fund, err := q.GetFundingByIntent(ctx, intent.ID)
			if err != nil {
				return err
			}
			attempts, err := q.ListExecutionAttemptsByIntent(ctx, intent.ID)
			if err != nil {
				return err
			}
			result, err = e.settleFunding(ctx, q, intent, fund, wallet, len(attempts)+1)
			return err
		case domain.IntentTransfer:
			tr, err := q.GetTransferByIntent(ctx, intent.ID)
			if err != nil {
				return err
			}
			if _, err := e.allowedWallet(ctx, q, tr.ReceiverWalletID); err != nil {
				return err
			}
			result, err = e.settleTransfer(ctx, q, intent, tr)
			return err
		case domain.IntentWithdrawal:
			wd, err := q.GetWithdrawalByIntent(ctx, intent.ID)
			if err != nil {
				return err
			}
			result, err = e.settleWithdrawal(ctx, q, intent, wd, wallet.Currency)
			return err
		default:
			return fmt.Errorf("%w: unknown intent type %s", domain.ErrValidation, intent.Type)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
