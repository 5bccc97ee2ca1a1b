package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tonife/walletcore/internal/domain"
)

// Memory is an in-process Store with the same semantics as Postgres: unique
// constraints map to ErrDuplicate, conditional updates to ErrStale, and
// WithinTx rolls back on error via snapshot-and-restore. Transactions are
// fully serialized, which is a strictly stronger isolation level than the
// production store.
type Memory struct {
	mu   sync.Mutex
	txMu sync.Mutex

	state memState
}

var _ Store = (*Memory)(nil)

type memState struct {
	users       map[string]domain.User
	wallets     map[string]domain.Wallet
	balances    map[string]domain.Balance // keyed by wallet id
	intents     map[string]domain.TransactionIntent
	fundings    map[string]domain.Funding
	transfers   map[string]domain.Transfer
	withdrawals map[string]domain.Withdrawal
	idemKeys    map[string]domain.IdempotencyKeyRecord // keyed by idempotency key
	entries     []domain.LedgerEntry
	auditLogs   []domain.AuditLog
	attempts    []domain.ExecutionAttempt
}

func NewMemory() *Memory {
	return &Memory{state: memState{
		users:       map[string]domain.User{},
		wallets:     map[string]domain.Wallet{},
		balances:    map[string]domain.Balance{},
		intents:     map[string]domain.TransactionIntent{},
		fundings:    map[string]domain.Funding{},
		transfers:   map[string]domain.Transfer{},
		withdrawals: map[string]domain.Withdrawal{},
		idemKeys:    map[string]domain.IdempotencyKeyRecord{},
	}}
}

func (s memState) clone() memState {
	out := memState{
		users:       make(map[string]domain.User, len(s.users)),
		wallets:     make(map[string]domain.Wallet, len(s.wallets)),
		balances:    make(map[string]domain.Balance, len(s.balances)),
		intents:     make(map[string]domain.TransactionIntent, len(s.intents)),
		fundings:    make(map[string]domain.Funding, len(s.fundings)),
		transfers:   make(map[string]domain.Transfer, len(s.transfers)),
		withdrawals: make(map[string]domain.Withdrawal, len(s.withdrawals)),
		idemKeys:    make(map[string]domain.IdempotencyKeyRecord, len(s.idemKeys)),
		entries:     append([]domain.LedgerEntry(nil), s.entries...),
		auditLogs:   append([]domain.AuditLog(nil), s.auditLogs...),
		attempts:    append([]domain.ExecutionAttempt(nil), s.attempts...),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.wallets {
		out.wallets[k] = v
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, v := range s.intents {
		out.intents[k] = v
	}
	for k, v := range s.fundings {
		out.fundings[k] = v
	}
	for k, v := range s.transfers {
		out.transfers[k] = v
	}
	for k, v := range s.withdrawals {
		out.withdrawals[k] = v
	}
	for k, v := range s.idemKeys {
		out.idemKeys[k] = v
	}
	return out
}

// WithinTx serializes whole transactions; on error the pre-transaction state
// is restored.
func (m *Memory) WithinTx(_ context.Context, fn func(q Querier) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.state.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.state.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.users[u.ID]; ok {
		return fmt.Errorf("%w: users.id", ErrDuplicate)
	}
	for _, existing := range m.state.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users.email", ErrDuplicate)
		}
	}
	row := *u
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.users[u.ID] = row
	return nil
}

func (m *Memory) GetWallet(_ context.Context, id string) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.state.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (m *Memory) GetWalletByUserAndCurrency(_ context.Context, userID, currency string) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.state.wallets {
		if w.UserID == userID && w.Currency == currency {
			out := w
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertWallet(_ context.Context, w *domain.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.wallets[w.ID]; ok {
		return fmt.Errorf("%w: wallets.id", ErrDuplicate)
	}
	row := *w
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.wallets[w.ID] = row
	return nil
}

func (m *Memory) GetBalanceForUpdate(_ context.Context, walletID string) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.state.balances[walletID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *Memory) InsertBalance(_ context.Context, b *domain.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.balances[b.WalletID]; ok {
		return fmt.Errorf("%w: balances.wallet_id", ErrDuplicate)
	}
	row := *b
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.balances[b.WalletID] = row
	return nil
}

func (m *Memory) UpdateAvailableBalance(_ context.Context, walletID string, before, after decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.state.balances[walletID]
	if !ok || !b.Available.Equal(before) {
		return fmt.Errorf("%w: balance of wallet %s changed concurrently", ErrStale, walletID)
	}
	b.Available = after
	b.UpdatedAt = time.Now()
	m.state.balances[walletID] = b
	return nil
}

func (m *Memory) InsertIntent(_ context.Context, in *domain.TransactionIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.intents[in.ID]; ok {
		return fmt.Errorf("%w: transaction_intents.id", ErrDuplicate)
	}
	for _, existing := range m.state.intents {
		if existing.Reference == in.Reference {
			return fmt.Errorf("%w: transaction_intents.reference", ErrDuplicate)
		}
		// NULL keys never conflict in the production schema.
		if in.IdempotencyKey != "" && existing.IdempotencyKey == in.IdempotencyKey {
			return fmt.Errorf("%w: transaction_intents.idempotency_key", ErrDuplicate)
		}
	}
	row := *in
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.intents[in.ID] = row
	return nil
}

func (m *Memory) GetIntent(_ context.Context, id string) (*domain.TransactionIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.state.intents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &in, nil
}

func (m *Memory) UpdateIntentStatus(_ context.Context, id string, from, to domain.IntentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.state.intents[id]
	if !ok || in.Status != from {
		return fmt.Errorf("%w: intent %s is not %s", ErrStale, id, from)
	}
	in.Status = to
	in.UpdatedAt = time.Now()
	m.state.intents[id] = in
	return nil
}

func (m *Memory) InsertFunding(_ context.Context, f *domain.Funding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.fundings[f.ID]; ok {
		return fmt.Errorf("%w: fundings.id", ErrDuplicate)
	}
	row := *f
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.fundings[f.ID] = row
	return nil
}

func (m *Memory) GetFundingByIntent(_ context.Context, intentID string) (*domain.Funding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.state.fundings {
		if f.TransactionIntentID == intentID {
			out := f
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateFundingStatus(_ context.Context, id string, status domain.OperationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.state.fundings[id]
	if !ok {
		return ErrNotFound
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	m.state.fundings[id] = f
	return nil
}

func (m *Memory) InsertTransfer(_ context.Context, t *domain.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.transfers[t.ID]; ok {
		return fmt.Errorf("%w: transfers.id", ErrDuplicate)
	}
	row := *t
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.transfers[t.ID] = row
	return nil
}

func (m *Memory) GetTransferByIntent(_ context.Context, intentID string) (*domain.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.state.transfers {
		if t.TransactionIntentID == intentID {
			out := t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateTransferStatus(_ context.Context, id string, status domain.OperationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.transfers[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	m.state.transfers[id] = t
	return nil
}

func (m *Memory) InsertWithdrawal(_ context.Context, w *domain.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.withdrawals[w.ID]; ok {
		return fmt.Errorf("%w: withdrawals.id", ErrDuplicate)
	}
	row := *w
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.withdrawals[w.ID] = row
	return nil
}

func (m *Memory) GetWithdrawalByIntent(_ context.Context, intentID string) (*domain.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.state.withdrawals {
		if w.TransactionIntentID == intentID {
			out := w
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateWithdrawalStatus(_ context.Context, id string, status domain.OperationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.state.withdrawals[id]
	if !ok {
		return ErrNotFound
	}
	w.Status = status
	w.UpdatedAt = time.Now()
	m.state.withdrawals[id] = w
	return nil
}

func (m *Memory) InsertLedgerEntry(_ context.Context, e *domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *e
	row.CreatedAt = time.Now()
	m.state.entries = append(m.state.entries, row)
	return nil
}

func (m *Memory) ListLedgerEntriesByWallet(_ context.Context, walletID string) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.state.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) ListLedgerEntriesByIntent(_ context.Context, intentID string) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.state.entries {
		if e.TransactionIntentID == intentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) GetIdempotencyKey(_ context.Context, key string) (*domain.IdempotencyKeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.state.idemKeys[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) InsertIdempotencyKey(_ context.Context, rec *domain.IdempotencyKeyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.idemKeys[rec.Key]; ok {
		return fmt.Errorf("%w: idempotency_keys.idempotency_key", ErrDuplicate)
	}
	row := *rec
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.state.idemKeys[rec.Key] = row
	return nil
}

func (m *Memory) UpdateIdempotencyKey(_ context.Context, key string, status domain.IdempotencyStatus, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.state.idemKeys[key]
	if !ok {
		return fmt.Errorf("%w: idempotency key %s", ErrNotFound, key)
	}
	rec.Status = status
	rec.ResponsePayload = append([]byte(nil), payload...)
	rec.UpdatedAt = time.Now()
	m.state.idemKeys[key] = rec
	return nil
}

func (m *Memory) InsertAuditLog(_ context.Context, a *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *a
	row.CreatedAt = time.Now()
	m.state.auditLogs = append(m.state.auditLogs, row)
	return nil
}

func (m *Memory) ListAuditLogsByEntity(_ context.Context, entityType domain.EntityType, entityID string) ([]domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditLog
	for _, a := range m.state.auditLogs {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) InsertExecutionAttempt(_ context.Context, a *domain.ExecutionAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *a
	row.AttemptedAt = time.Now()
	m.state.attempts = append(m.state.attempts, row)
	return nil
}

func (m *Memory) ListExecutionAttemptsByIntent(_ context.Context, intentID string) ([]domain.ExecutionAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExecutionAttempt
	for _, a := range m.state.attempts {
		if a.TransactionIntentID == intentID {
			out = append(out, a)
		}
	}
	return out, nil
}
