package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type UserStatus string

const (
	UserActive      UserStatus = "active"
	UserBlacklisted UserStatus = "blacklisted"
)

// User owns wallets. Blacklisted users are rejected before any funds move.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Status      UserStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type WalletStatus string

const (
	WalletActive WalletStatus = "active"
	WalletLocked WalletStatus = "locked"
)

// BankDetails identifies the external account tied to a wallet or a
// withdrawal destination.
type BankDetails struct {
	BankAccountNumber string `json:"bank_account_number"`
	BankCode          string `json:"bank_code"`
}

// Wallet is a single-currency store of value. Currency is immutable once set.
type Wallet struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Currency       string       `json:"currency"`
	AccountDetails BankDetails  `json:"account_details"`
	Status         WalletStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Balance is the one-to-one money position of a wallet. Only the balance
// ledger mutates it, always inside the settlement transaction.
type Balance struct {
	ID        string          `json:"id"`
	WalletID  string          `json:"wallet_id"`
	Available decimal.Decimal `json:"available_balance"`
	Pending   decimal.Decimal `json:"pending_balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type IntentType string

const (
	IntentFunding    IntentType = "funding"
	IntentTransfer   IntentType = "transfer"
	IntentWithdrawal IntentType = "withdrawal"
)

type IntentDirection string

const (
	DirectionCredit   IntentDirection = "credit"
	DirectionDebit    IntentDirection = "debit"
	DirectionInternal IntentDirection = "internal"
)

type IntentStatus string

const (
	IntentCreated    IntentStatus = "created"
	IntentProcessing IntentStatus = "processing"
	IntentSettled    IntentStatus = "settled"
	IntentFailed     IntentStatus = "failed"
)

// TransactionIntent is the durable unit of work. Status only ever moves
// forward: created -> processing -> settled | failed.
type TransactionIntent struct {
	ID             string          `json:"id"`
	WalletID       string          `json:"wallet_id"`
	Type           IntentType      `json:"type"`
	Direction      IntentDirection `json:"direction"`
	Amount         decimal.Decimal `json:"amount"`
	Status         IntentStatus    `json:"status"`
	Reference      string          `json:"reference"`
	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       IntentMetadata  `json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type EntryType string

const (
	EntryDebit  EntryType = "debit"
	EntryCredit EntryType = "credit"
)

// LedgerEntry is one side of a double-entry movement. Rows are immutable and
// created in balanced pairs per settled intent.
type LedgerEntry struct {
	ID                  string          `json:"id"`
	WalletID            string          `json:"wallet_id"`
	TransactionIntentID string          `json:"transaction_intent_id"`
	EntryType           EntryType       `json:"entry_type"`
	Amount              decimal.Decimal `json:"amount"`
	BalanceBefore       decimal.Decimal `json:"balance_before"`
	BalanceAfter        decimal.Decimal `json:"balance_after"`
	CreatedAt           time.Time       `json:"created_at"`
}

type OperationStatus string

const (
	OperationPending OperationStatus = "pending"
	OperationSuccess OperationStatus = "success"
	OperationFailed  OperationStatus = "failed"
)

// Funding mirrors a funding intent with its provider-specific fields.
type Funding struct {
	ID                  string          `json:"id"`
	WalletID            string          `json:"wallet_id"`
	Amount              decimal.Decimal `json:"amount"`
	Status              OperationStatus `json:"status"`
	Reference           string          `json:"reference"`
	Provider            string          `json:"provider"`
	TransactionIntentID string          `json:"transaction_intent_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Transfer mirrors an internal wallet-to-wallet intent.
type Transfer struct {
	ID                  string          `json:"id"`
	SenderWalletID      string          `json:"sender_wallet_id"`
	ReceiverWalletID    string          `json:"receiver_wallet_id"`
	Amount              decimal.Decimal `json:"amount"`
	Status              OperationStatus `json:"status"`
	Reference           string          `json:"reference"`
	TransactionIntentID string          `json:"transaction_intent_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Withdrawal mirrors a withdrawal intent and its external destination.
type Withdrawal struct {
	ID                  string          `json:"id"`
	WalletID            string          `json:"wallet_id"`
	Amount              decimal.Decimal `json:"amount"`
	Status              OperationStatus `json:"status"`
	Reference           string          `json:"reference"`
	Destination         BankDetails     `json:"destination"`
	TransactionIntentID string          `json:"transaction_intent_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type IdempotencyStatus string

const (
	IdempotencyProcessing IdempotencyStatus = "processing"
	IdempotencySuccess    IdempotencyStatus = "success"
	IdempotencyFailed     IdempotencyStatus = "failed"
)

// IdempotencyKeyRecord deduplicates client requests. The key column carries a
// unique constraint; a second concurrent insert means the first caller is
// still processing.
type IdempotencyKeyRecord struct {
	ID              string            `json:"id"`
	Key             string            `json:"idempotency_key"`
	RequestHash     string            `json:"request_hash"`
	Status          IdempotencyStatus `json:"status"`
	ResponsePayload json.RawMessage   `json:"response_payload,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type AuditActorType string

const (
	ActorSystem  AuditActorType = "system"
	ActorUser    AuditActorType = "user"
	ActorAdmin   AuditActorType = "admin"
	ActorService AuditActorType = "service"
)

type EntityType string

const (
	EntityTransactionIntent EntityType = "transaction_intent"
	EntityLedgerEntry       EntityType = "ledger_entry"
	EntityBalance           EntityType = "balance"
)

type AuditAction string

const (
	ActionCreateIntent      AuditAction = "create_intent"
	ActionSettleTxn         AuditAction = "settle_txn"
	ActionTxnFailed         AuditAction = "txn_failed"
	ActionCreateLedgerEntry AuditAction = "create_ledger_entry"
	ActionUpdateBalance     AuditAction = "update_balance"
)

// AuditLog rows are append-only; nothing ever updates or deletes them.
type AuditLog struct {
	ID         string         `json:"id"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     AuditAction    `json:"action"`
	ActorType  AuditActorType `json:"actor_type"`
	ActorID    string         `json:"actor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Remark     string         `json:"remark,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type ExecutionStatus string

const (
	ExecutionStarted  ExecutionStatus = "STARTED"
	ExecutionRetrying ExecutionStatus = "RETRYING"
	ExecutionSuccess  ExecutionStatus = "SUCCESS"
	ExecutionFailed   ExecutionStatus = "FAILED"
	ExecutionTimeout  ExecutionStatus = "TIMEOUT"
)

// ExecutionAttempt records one provider call made while driving an intent.
type ExecutionAttempt struct {
	ID                  string          `json:"id"`
	TransactionIntentID string          `json:"transaction_intent_id"`
	Status              ExecutionStatus `json:"status"`
	AttemptNumber       int             `json:"attempt_number"`
	Provider            string          `json:"provider"`
	ProviderReference   string          `json:"provider_reference,omitempty"`
	ResponsePayload     map[string]any  `json:"response_payload,omitempty"`
	AttemptedAt         time.Time       `json:"attempted_at"`
}
