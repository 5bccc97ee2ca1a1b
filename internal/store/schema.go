package store

import (
	"context"
	"fmt"
)

// schemaStatements creates every table the engine touches. Statements are
// idempotent so startup can always run them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(50) PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		phone_number VARCHAR(50),
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id VARCHAR(50) PRIMARY KEY,
		user_id VARCHAR(50) NOT NULL REFERENCES users(id),
		currency VARCHAR(10) NOT NULL,
		account_details JSONB NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		id VARCHAR(50) PRIMARY KEY,
		wallet_id VARCHAR(50) UNIQUE NOT NULL REFERENCES wallets(id),
		available_balance DECIMAL(18,2) NOT NULL DEFAULT 0,
		pending_balance DECIMAL(18,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_intents (
		id VARCHAR(50) PRIMARY KEY,
		wallet_id VARCHAR(50) NOT NULL REFERENCES wallets(id),
		type VARCHAR(20) NOT NULL,
		direction VARCHAR(20) NOT NULL,
		amount DECIMAL(18,2) NOT NULL,
		status VARCHAR(20) NOT NULL,
		reference VARCHAR(100) UNIQUE NOT NULL,
		idempotency_key VARCHAR(255) UNIQUE,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id VARCHAR(50) PRIMARY KEY,
		wallet_id VARCHAR(50) NOT NULL REFERENCES wallets(id),
		transaction_intent_id VARCHAR(50) NOT NULL REFERENCES transaction_intents(id),
		entry_type VARCHAR(10) NOT NULL,
		amount DECIMAL(18,2) NOT NULL,
		balance_before DECIMAL(18,2) NOT NULL,
		balance_after DECIMAL(18,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS fundings (
		id VARCHAR(50) PRIMARY KEY,
		wallet_id VARCHAR(50) NOT NULL REFERENCES wallets(id),
		amount DECIMAL(18,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		reference VARCHAR(100) NOT NULL,
		provider VARCHAR(100) NOT NULL,
		transaction_intent_id VARCHAR(50) NOT NULL REFERENCES transaction_intents(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id VARCHAR(50) PRIMARY KEY,
		sender_wallet_id VARCHAR(50) NOT NULL REFERENCES wallets(id),
		receiver_wallet_id VARCHAR(50) NOT NULL REFERENCES wallets(id),
		amount DECIMAL(18,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		reference VARCHAR(100) NOT NULL,
		transaction_intent_id VARCHAR(50) NOT NULL REFERENCES transaction_intents(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS withdrawals (
		id VARCHAR(50) PRIMARY KEY,
		wallet_id VARCHAR(50) NOT NULL REFERENCES wallets(id),
		amount DECIMAL(18,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		reference VARCHAR(100) NOT NULL,
		destination JSONB NOT NULL,
		transaction_intent_id VARCHAR(50) NOT NULL REFERENCES transaction_intents(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		id VARCHAR(50) PRIMARY KEY,
		idempotency_key VARCHAR(255) UNIQUE NOT NULL,
		request_hash VARCHAR(64) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'processing',
		response_payload JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id VARCHAR(50) PRIMARY KEY,
		entity_type VARCHAR(50) NOT NULL,
		entity_id VARCHAR(100) NOT NULL,
		action VARCHAR(50) NOT NULL,
		actor_type VARCHAR(20) NOT NULL,
		actor_id VARCHAR(100),
		metadata JSONB,
		remark VARCHAR(500),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id)`,
	`CREATE TABLE IF NOT EXISTS execution_attempts (
		id VARCHAR(50) PRIMARY KEY,
		transaction_intent_id VARCHAR(50) NOT NULL REFERENCES transaction_intents(id),
		status VARCHAR(20) NOT NULL,
		attempt_number INTEGER NOT NULL,
		provider VARCHAR(100) NOT NULL,
		provider_reference VARCHAR(100),
		response_payload JSONB,
		attempted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_wallet ON ledger_entries (wallet_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_intent ON ledger_entries (transaction_intent_id)`,
}

// Init creates the schema. Safe to call on every startup.
func (p *Postgres) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}
	return nil
}
