// Package store is the relational persistence layer. The production
// implementation runs on Postgres via pgx; Memory is the in-process
// implementation used by tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("row not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate row")
	// ErrStale is returned when a conditional update matched no row, i.e.
	// the guarded column changed under the caller.
	ErrStale = errors.New("stale row")
)

// Querier is the full query surface. Inside WithinTx all calls run on the
// same database transaction.
type Querier interface {
	// Users
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	InsertUser(ctx context.Context, u *domain.User) error

	// Wallets
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	GetWalletByUserAndCurrency(ctx context.Context, userID, currency string) (*domain.Wallet, error)
	InsertWallet(ctx context.Context, w *domain.Wallet) error

	// Balances
	GetBalanceForUpdate(ctx context.Context, walletID string) (*domain.Balance, error)
	InsertBalance(ctx context.Context, b *domain.Balance) error
	// UpdateAvailableBalance is a conditional write: it only succeeds while
	// the stored available balance still equals before, returning ErrStale
	// otherwise.
	UpdateAvailableBalance(ctx context.Context, walletID string, before, after decimal.Decimal) error

	// Transaction intents
	InsertIntent(ctx context.Context, in *domain.TransactionIntent) error
	GetIntent(ctx context.Context, id string) (*domain.TransactionIntent, error)
	// UpdateIntentStatus enforces forward-only transitions: the row is only
	// touched while its status equals from, returning ErrStale otherwise.
	UpdateIntentStatus(ctx context.Context, id string, from, to domain.IntentStatus) error

	// Operation records
	InsertFunding(ctx context.Context, f *domain.Funding) error
	GetFundingByIntent(ctx context.Context, intentID string) (*domain.Funding, error)
	UpdateFundingStatus(ctx context.Context, id string, status domain.OperationStatus) error
	InsertTransfer(ctx context.Context, t *domain.Transfer) error
	GetTransferByIntent(ctx context.Context, intentID string) (*domain.Transfer, error)
	UpdateTransferStatus(ctx context.Context, id string, status domain.OperationStatus) error
	InsertWithdrawal(ctx context.Context, w *domain.Withdrawal) error
	GetWithdrawalByIntent(ctx context.Context, intentID string) (*domain.Withdrawal, error)
	UpdateWithdrawalStatus(ctx context.Context, id string, status domain.OperationStatus) error

	// Ledger entries
	InsertLedgerEntry(ctx context.Context, e *domain.LedgerEntry) error
	ListLedgerEntriesByWallet(ctx context.Context, walletID string) ([]domain.LedgerEntry, error)
	ListLedgerEntriesByIntent(ctx context.Context, intentID string) ([]domain.LedgerEntry, error)

	// Idempotency keys
	GetIdempotencyKey(ctx context.Context, key string) (*domain.IdempotencyKeyRecord, error)
	InsertIdempotencyKey(ctx context.Context, rec *domain.IdempotencyKeyRecord) error
	UpdateIdempotencyKey(ctx context.Context, key string, status domain.IdempotencyStatus, payload []byte) error

	// Audit logs
	InsertAuditLog(ctx context.Context, a *domain.AuditLog) error
	ListAuditLogsByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.AuditLog, error)

	// Execution attempts
	InsertExecutionAttempt(ctx context.Context, a *domain.ExecutionAttempt) error
	ListExecutionAttemptsByIntent(ctx context.Context, intentID string) ([]domain.ExecutionAttempt, error)
}

// Store adds the transactional boundary. WithinTx commits when fn returns
// nil and rolls back otherwise.
type Store interface {
	Querier
	WithinTx(ctx context.Context, fn func(q Querier) error) error
}
