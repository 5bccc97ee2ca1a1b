package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the full HTTP surface. Mutating money endpoints run behind
// the idempotency middleware; reads and onboarding do not.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/users", instrument("/users", h.CreateUserHandler)).Methods("POST")
	v1.HandleFunc("/users/{id}", instrument("/users/{id}", h.GetUserHandler)).Methods("GET")
	v1.HandleFunc("/wallets", instrument("/wallets", h.CreateWalletHandler)).Methods("POST")
	v1.HandleFunc("/wallets/{id}", instrument("/wallets/{id}", h.GetWalletHandler)).Methods("GET")
	v1.HandleFunc("/wallets/{id}/ledger-entries", instrument("/wallets/{id}/ledger-entries", h.ListLedgerEntriesHandler)).Methods("GET")

	v1.HandleFunc("/fundings", instrument("/fundings", h.idempotent(h.CreateFundingHandler))).Methods("POST")
	v1.HandleFunc("/transfers", instrument("/transfers", h.idempotent(h.CreateTransferHandler))).Methods("POST")
	v1.HandleFunc("/withdrawals", instrument("/withdrawals", h.idempotent(h.CreateWithdrawalHandler))).Methods("POST")

	v1.HandleFunc("/transactions/{id}", instrument("/transactions/{id}", h.GetTransactionHandler)).Methods("GET")
	v1.HandleFunc("/transactions/{id}/execute", instrument("/transactions/{id}/execute", h.ExecuteTransactionHandler)).Methods("POST")
	v1.HandleFunc("/transactions/{id}/attempts", instrument("/transactions/{id}/attempts", h.ListAttemptsHandler)).Methods("GET")
	v1.HandleFunc("/audit-logs", instrument("/audit-logs", h.ListAuditLogsHandler)).Methods("GET")

	return r
}
