package main

import (
	"context"
	"log"
	"net/http"

	"github.com/tonife/walletcore/internal/api"
	"github.com/tonife/walletcore/internal/audit"
	"github.com/tonife/walletcore/internal/clearing"
	"github.com/tonife/walletcore/internal/config"
	"github.com/tonife/walletcore/internal/engine"
	"github.com/tonife/walletcore/internal/idempotency"
	"github.com/tonife/walletcore/internal/kyc"
	"github.com/tonife/walletcore/internal/ledger"
	"github.com/tonife/walletcore/internal/processor"
	"github.com/tonife/walletcore/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.NewPostgres(cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Init(context.Background()); err != nil {
		log.Fatalf("Schema initialization failed: %v", err)
	}

	recorder := audit.NewRecorder()
	eng := engine.New(
		db,
		ledger.New(recorder),
		clearing.NewResolver(cfg.ClearingEmail),
		recorder,
		processor.NewSimulated(),
	)
	handler := api.NewHandler(
		db,
		eng,
		kyc.NewAdjutorClient(cfg.AdjutorBaseURL, cfg.AdjutorAPIKey),
		idempotency.NewCoordinator(db),
	)

	router := api.NewRouter(handler)

	log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Env)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
