package main

import (
	"context"
	"log"

	"github.com/tonife/walletcore/internal/config"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type seedUser struct {
	email     string
	firstName string
	lastName  string
	phone     string
	currency  string
	bank      domain.BankDetails
}

var seedUsers = []seedUser{
	{"tomi.adebayo@example.com", "Tomi", "Adebayo", "+2348012345678", "NGN", domain.BankDetails{BankAccountNumber: "0123456789", BankCode: "058"}},
	{"ada.eze@example.com", "Ada", "Eze", "+2348098765432", "NGN", domain.BankDetails{BankAccountNumber: "0987654321", BankCode: "044"}},
	{"kunle.okafor@example.com", "Kunle", "Okafor", "+2347011122233", "NGN", domain.BankDetails{BankAccountNumber: "1122334455", BankCode: "057"}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	db, err := store.NewPostgres(cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Init(ctx); err != nil {
		log.Fatalf("Schema initialization failed: %v", err)
	}

	log.Println("--- Seeding Database ---")

	for _, su := range seedUsers {
		if _, err := db.GetUserByEmail(ctx, su.email); err == nil {
			log.Printf("%s already exists, skipping", su.email)
			continue
		}

		user := &domain.User{
			ID:          domain.NewID(domain.PrefixUser),
			Email:       su.email,
			FirstName:   su.firstName,
			LastName:    su.lastName,
			PhoneNumber: su.phone,
			Status:      domain.UserActive,
		}
		wallet := &domain.Wallet{
			ID:             domain.NewID(domain.PrefixWallet),
			UserID:         user.ID,
			Currency:       su.currency,
			AccountDetails: su.bank,
			Status:         domain.WalletActive,
		}

		err := db.WithinTx(ctx, func(q store.Querier) error {
			if err := q.InsertUser(ctx, user); err != nil {
				return err
			}
			if err := q.InsertWallet(ctx, wallet); err != nil {
				return err
			}
			return q.InsertBalance(ctx, &domain.Balance{
				ID:        domain.NewID(domain.PrefixBalance),
				WalletID:  wallet.ID,
				Available: money.Zero(),
				Pending:   money.Zero(),
			})
		})
		if err != nil {
			log.Fatalf("Seeding %s failed: %v", su.email, err)
		}
		log.Printf("Seeded %s with wallet %s", su.email, wallet.ID)
	}

	log.Println("Done.")
}
