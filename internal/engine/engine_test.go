package engine_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonife/walletcore/internal/audit"
	"github.com/tonife/walletcore/internal/clearing"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/engine"
	"github.com/tonife/walletcore/internal/ledger"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/processor"
	"github.com/tonife/walletcore/internal/store"
)

func newTestEngine(t *testing.T) (*engine.Engine, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	rec := audit.NewRecorder()
	eng := engine.New(s, ledger.New(rec), clearing.NewResolver(""), rec, processor.NewSimulated())
	return eng, s
}

func seedWallet(t *testing.T, s *store.Memory, currency, available string, status domain.UserStatus) *domain.Wallet {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{
		ID:        domain.NewID(domain.PrefixUser),
		Email:     domain.NewID(domain.PrefixUser) + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Status:    status,
	}
	require.NoError(t, s.InsertUser(ctx, user))

	wallet := &domain.Wallet{
		ID:       domain.NewID(domain.PrefixWallet),
		UserID:   user.ID,
		Currency: currency,
		Status:   domain.WalletActive,
	}
	require.NoError(t, s.InsertWallet(ctx, wallet))

	require.NoError(t, s.InsertBalance(ctx, &domain.Balance{
		ID:        domain.NewID(domain.PrefixBalance),
		WalletID:  wallet.ID,
		Available: decimal.RequireFromString(available),
		Pending:   money.Zero(),
	}))
	return wallet
}

func availableBalance(t *testing.T, s *store.Memory, walletID string) string {
	t.Helper()
	bal, err := s.GetBalanceForUpdate(context.Background(), walletID)
	require.NoError(t, err)
	return money.String(bal.Available)
}

func clearingWallet(t *testing.T, s *store.Memory, currency string) *domain.Wallet {
	t.Helper()
	ctx := context.Background()
	user, err := s.GetUserByEmail(ctx, clearing.DefaultEmail)
	require.NoError(t, err)
	wallet, err := s.GetWalletByUserAndCurrency(ctx, user.ID, currency)
	require.NoError(t, err)
	return wallet
}

func auditActions(t *testing.T, s *store.Memory, intentID string) []domain.AuditAction {
	t.Helper()
	logs, err := s.ListAuditLogsByEntity(context.Background(), domain.EntityTransactionIntent, intentID)
	require.NoError(t, err)
	actions := make([]domain.AuditAction, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	return actions
}

func TestFundSettles(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	result, err := eng.Fund(ctx, engine.FundParams{
		WalletID:       wallet.ID,
		Amount:         "250.00",
		Provider:       "adjutor",
		IdempotencyKey: "fund-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OperationSuccess, result.Status)
	assert.Equal(t, "250.00", result.Amount)
	assert.Equal(t, wallet.ID, result.WalletID)

	intent, err := s.GetIntent(ctx, result.TransactionIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentSettled, intent.Status)
	assert.Equal(t, domain.DirectionCredit, intent.Direction)

	assert.Equal(t, "250.00", availableBalance(t, s, wallet.ID))

	entries, err := s.ListLedgerEntriesByIntent(ctx, intent.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2, "every settlement posts a balanced pair")

	cw := clearingWallet(t, s, "NGN")
	assert.Equal(t, "-250.00", availableBalance(t, s, cw.ID))

	var credit *domain.LedgerEntry
	for i := range entries {
		if entries[i].EntryType == domain.EntryCredit {
			credit = &entries[i]
		}
	}
	require.NotNil(t, credit)
	assert.Equal(t, wallet.ID, credit.WalletID)
	assert.Equal(t, "0.00", money.String(credit.BalanceBefore))
	assert.Equal(t, "250.00", money.String(credit.BalanceAfter))

	attempts, err := s.ListExecutionAttemptsByIntent(ctx, intent.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.ExecutionSuccess, attempts[0].Status)
	assert.Equal(t, 1, attempts[0].AttemptNumber)

	actions := auditActions(t, s, intent.ID)
	assert.Contains(t, actions, domain.ActionCreateIntent)
	assert.Contains(t, actions, domain.ActionSettleTxn)
}

func TestFundProcessorRejected(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	result, err := eng.Fund(ctx, engine.FundParams{
		WalletID:       wallet.ID,
		Amount:         "100.00",
		Provider:       processor.RejectProvider,
		IdempotencyKey: "fund-reject",
	})
	require.NoError(t, err, "a processor rejection is a committed outcome, not an error")
	assert.Equal(t, domain.OperationFailed, result.Status)

	intent, err := s.GetIntent(ctx, result.TransactionIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFailed, intent.Status)

	assert.Equal(t, "0.00", availableBalance(t, s, wallet.ID))

	entries, err := s.ListLedgerEntriesByIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Empty(t, entries, "no money moves on a failed intent")

	attempts, err := s.ListExecutionAttemptsByIntent(ctx, intent.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, domain.ExecutionFailed, attempts[0].Status)

	assert.Contains(t, auditActions(t, s, intent.ID), domain.ActionTxnFailed)
}

func TestFundValidation(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	_, err := eng.Fund(ctx, engine.FundParams{WalletID: wallet.ID, Amount: "-5.00", Provider: "adjutor"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = eng.Fund(ctx, engine.FundParams{WalletID: wallet.ID, Amount: "1.005", Provider: "adjutor"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = eng.Fund(ctx, engine.FundParams{WalletID: wallet.ID, Amount: "10.00"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = eng.Fund(ctx, engine.FundParams{WalletID: "wal-missing", Amount: "10.00", Provider: "adjutor"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFundBlacklistedOwner(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "0.00", domain.UserBlacklisted)

	_, err := eng.Fund(ctx, engine.FundParams{WalletID: wallet.ID, Amount: "10.00", Provider: "adjutor"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransferSettles(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	sender := seedWallet(t, s, "NGN", "200.00", domain.UserActive)
	receiver := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	result, err := eng.Transfer(ctx, engine.TransferParams{
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		Amount:           "150.00",
		IdempotencyKey:   "transfer-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OperationSuccess, result.Status)

	assert.Equal(t, "50.00", availableBalance(t, s, sender.ID))
	assert.Equal(t, "150.00", availableBalance(t, s, receiver.ID))

	entries, err := s.ListLedgerEntriesByIntent(ctx, result.TransactionIntentID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		switch e.EntryType {
		case domain.EntryDebit:
			assert.Equal(t, sender.ID, e.WalletID)
			assert.Equal(t, "200.00", money.String(e.BalanceBefore))
			assert.Equal(t, "50.00", money.String(e.BalanceAfter))
		case domain.EntryCredit:
			assert.Equal(t, receiver.ID, e.WalletID)
			assert.Equal(t, "0.00", money.String(e.BalanceBefore))
			assert.Equal(t, "150.00", money.String(e.BalanceAfter))
		}
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	sender := seedWallet(t, s, "NGN", "100.00", domain.UserActive)
	receiver := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	result, err := eng.Transfer(ctx, engine.TransferParams{
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		Amount:           "150.00",
		IdempotencyKey:   "transfer-poor",
	})
	require.NoError(t, err, "insufficient funds is a committed outcome")
	assert.Equal(t, domain.OperationFailed, result.Status)

	intent, err := s.GetIntent(ctx, result.TransactionIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFailed, intent.Status)

	assert.Equal(t, "100.00", availableBalance(t, s, sender.ID))
	assert.Equal(t, "0.00", availableBalance(t, s, receiver.ID))

	entries, err := s.ListLedgerEntriesByIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	logs, err := s.ListAuditLogsByEntity(ctx, domain.EntityTransactionIntent, intent.ID)
	require.NoError(t, err)
	var failed *domain.AuditLog
	for i := range logs {
		if logs[i].Action == domain.ActionTxnFailed {
			failed = &logs[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "Insufficient funds", failed.Metadata["reason"])
}

func TestTransferValidation(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	ngn := seedWallet(t, s, "NGN", "100.00", domain.UserActive)
	usd := seedWallet(t, s, "USD", "100.00", domain.UserActive)

	_, err := eng.Transfer(ctx, engine.TransferParams{SenderWalletID: ngn.ID, ReceiverWalletID: ngn.ID, Amount: "10.00"})
	assert.ErrorIs(t, err, domain.ErrValidation, "self transfer")

	_, err = eng.Transfer(ctx, engine.TransferParams{SenderWalletID: ngn.ID, ReceiverWalletID: usd.ID, Amount: "10.00"})
	assert.ErrorIs(t, err, domain.ErrValidation, "currency mismatch")

	_, err = eng.Transfer(ctx, engine.TransferParams{SenderWalletID: ngn.ID, ReceiverWalletID: usd.ID, Amount: "0"})
	assert.ErrorIs(t, err, domain.ErrValidation, "non-positive amount")
}

func TestWithdrawSettles(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "200.00", domain.UserActive)

	result, err := eng.Withdraw(ctx, engine.WithdrawParams{
		WalletID:       wallet.ID,
		Amount:         "75.00",
		Destination:    domain.BankDetails{BankAccountNumber: "0123456789", BankCode: "058"},
		IdempotencyKey: "withdraw-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OperationSuccess, result.Status)

	assert.Equal(t, "125.00", availableBalance(t, s, wallet.ID))

	cw := clearingWallet(t, s, "NGN")
	assert.Equal(t, "75.00", availableBalance(t, s, cw.ID))

	intent, err := s.GetIntent(ctx, result.TransactionIntentID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentSettled, intent.Status)
	assert.Equal(t, domain.DirectionDebit, intent.Direction)
}

func TestWithdrawValidation(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "200.00", domain.UserActive)

	_, err := eng.Withdraw(ctx, engine.WithdrawParams{WalletID: wallet.ID, Amount: "10.00"})
	assert.ErrorIs(t, err, domain.ErrValidation, "destination is required")
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "50.00", domain.UserActive)

	result, err := eng.Withdraw(ctx, engine.WithdrawParams{
		WalletID:       wallet.ID,
		Amount:         "75.00",
		Destination:    domain.BankDetails{BankAccountNumber: "0123456789", BankCode: "058"},
		IdempotencyKey: "withdraw-poor",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OperationFailed, result.Status)
	assert.Equal(t, "50.00", availableBalance(t, s, wallet.ID))
}

func TestClearingWalletIsSharedPerCurrency(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	w1 := seedWallet(t, s, "NGN", "0.00", domain.UserActive)
	w2 := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	for i, w := range []*domain.Wallet{w1, w2} {
		_, err := eng.Fund(ctx, engine.FundParams{
			WalletID:       w.ID,
			Amount:         "250.00",
			Provider:       "adjutor",
			IdempotencyKey: fmt.Sprintf("shared-clearing-%d", i),
		})
		require.NoError(t, err)
	}

	cw := clearingWallet(t, s, "NGN")
	assert.Equal(t, "-500.00", availableBalance(t, s, cw.ID), "both fundings debit the same clearing wallet")
}

func TestExecuteRedrivesStuckIntent(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	// Simulate a crash after the intent and funding rows were written but
	// before the settlement ran.
	intent := &domain.TransactionIntent{
		ID:        domain.NewID(domain.PrefixIntent),
		WalletID:  wallet.ID,
		Type:      domain.IntentFunding,
		Direction: domain.DirectionCredit,
		Amount:    decimal.RequireFromString("40.00"),
		Status:    domain.IntentCreated,
		Reference: domain.NewID(domain.PrefixFundingRef),
		Metadata:  domain.IntentMetadata{Funding: &domain.FundingMetadata{Provider: "adjutor"}},
	}
	require.NoError(t, s.InsertIntent(ctx, intent))
	require.NoError(t, s.InsertFunding(ctx, &domain.Funding{
		ID:                  domain.NewID(domain.PrefixFunding),
		WalletID:            wallet.ID,
		Amount:              intent.Amount,
		Status:              domain.OperationPending,
		Reference:           intent.Reference,
		Provider:            "adjutor",
		TransactionIntentID: intent.ID,
	}))

	result, err := eng.Execute(ctx, intent.ID, domain.IntentFunding)
	require.NoError(t, err)

	fr, ok := result.(*engine.FundingResult)
	require.True(t, ok)
	assert.Equal(t, domain.OperationSuccess, fr.Status)
	assert.Equal(t, "40.00", availableBalance(t, s, wallet.ID))

	settled, err := s.GetIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentSettled, settled.Status)
}

func TestExecuteRejectsWrongState(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	wallet := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	result, err := eng.Fund(ctx, engine.FundParams{
		WalletID:       wallet.ID,
		Amount:         "10.00",
		Provider:       "adjutor",
		IdempotencyKey: "execute-settled",
	})
	require.NoError(t, err)

	_, err = eng.Execute(ctx, result.TransactionIntentID, domain.IntentFunding)
	assert.ErrorIs(t, err, domain.ErrValidation, "a settled intent cannot be re-driven")

	_, err = eng.Execute(ctx, result.TransactionIntentID, domain.IntentTransfer)
	assert.ErrorIs(t, err, domain.ErrValidation, "type mismatch")

	_, err = eng.Execute(ctx, "txn-missing", domain.IntentFunding)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerConservation(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)
	a := seedWallet(t, s, "NGN", "0.00", domain.UserActive)
	b := seedWallet(t, s, "NGN", "0.00", domain.UserActive)

	_, err := eng.Fund(ctx, engine.FundParams{WalletID: a.ID, Amount: "300.00", Provider: "adjutor", IdempotencyKey: "c1"})
	require.NoError(t, err)
	_, err = eng.Transfer(ctx, engine.TransferParams{SenderWalletID: a.ID, ReceiverWalletID: b.ID, Amount: "120.00", IdempotencyKey: "c2"})
	require.NoError(t, err)
	_, err = eng.Withdraw(ctx, engine.WithdrawParams{
		WalletID:       b.ID,
		Amount:         "20.00",
		Destination:    domain.BankDetails{BankAccountNumber: "1", BankCode: "058"},
		IdempotencyKey: "c3",
	})
	require.NoError(t, err)

	cw := clearingWallet(t, s, "NGN")
	total := decimal.Sum(
		decimal.RequireFromString(availableBalance(t, s, a.ID)),
		decimal.RequireFromString(availableBalance(t, s, b.ID)),
		decimal.RequireFromString(availableBalance(t, s, cw.ID)),
	)
	assert.True(t, total.IsZero(), "system-wide balances sum to zero: got %s", total)
}
