// Package clearing resolves the system wallet that balances external-facing
// movements: funding debits it, withdrawal credits it.
package clearing

import (
	"context"
	"errors"
	"fmt"

	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

const DefaultEmail = "clearing@walletcore.local"

type Resolver struct {
	email string
}

func NewResolver(email string) *Resolver {
	if email == "" {
		email = DefaultEmail
	}
	return &Resolver{email: email}
}

// Resolve returns the clearing wallet id for a currency, creating the system
// user, wallet, and zeroed balance on first use. Everything runs on the
// caller's transaction; the check-then-insert race between two first uses is
// resolved by the enclosing transaction's isolation, not a cached global.
func (r *Resolver) Resolve(ctx context.Context, q store.Querier, currency string) (string, error) {
	user, err := q.GetUserByEmail(ctx, r.email)
	if errors.Is(err, store.ErrNotFound) {
		user = &domain.User{
			ID:        domain.NewID(domain.PrefixUser),
			Email:     r.email,
			FirstName: "Clearing",
			LastName:  "Account",
			Status:    domain.UserActive,
		}
		if err := q.InsertUser(ctx, user); err != nil {
			return "", fmt.Errorf("creating clearing user: %w", err)
		}
	} else if err != nil {
		return "", err
	}

	wallet, err := q.GetWalletByUserAndCurrency(ctx, user.ID, currency)
	if errors.Is(err, store.ErrNotFound) {
		wallet = &domain.Wallet{
			ID:       domain.NewID(domain.PrefixWallet),
			UserID:   user.ID,
			Currency: currency,
			Status:   domain.WalletActive,
		}
		if err := q.InsertWallet(ctx, wallet); err != nil {
			return "", fmt.Errorf("creating clearing wallet: %w", err)
		}
		bal := &domain.Balance{
			ID:        domain.NewID(domain.PrefixBalance),
			WalletID:  wallet.ID,
			Available: money.Zero(),
			Pending:   money.Zero(),
		}
		if err := q.InsertBalance(ctx, bal); err != nil {
			return "", fmt.Errorf("creating clearing balance: %w", err)
		}
	} else if err != nil {
		return "", err
	}

	return wallet.ID, nil
}
