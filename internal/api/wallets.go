package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type createWalletRequest struct {
	UserID         string             `json:"user_id"`
	Currency       string             `json:"currency"`
	AccountDetails domain.BankDetails `json:"account_details"`
}

type walletResponse struct {
	Wallet  *domain.Wallet  `json:"wallet"`
	Balance *domain.Balance `json:"balance"`
}

// CreateWalletHandler opens an additional wallet for an existing user. One
// wallet per user per currency.
func (h *Handler) CreateWalletHandler(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDomainError(w, err)
		return
	}
	if req.UserID == "" || req.Currency == "" {
		respondWithError(w, http.StatusUnprocessableEntity, "user_id and currency are required")
		return
	}

	user, err := h.store.GetUser(r.Context(), req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if user.Status == domain.UserBlacklisted {
		respondWithError(w, http.StatusForbidden, "user is blacklisted")
		return
	}

	wallet := &domain.Wallet{
		ID:             domain.NewID(domain.PrefixWallet),
		UserID:         user.ID,
		Currency:       req.Currency,
		AccountDetails: req.AccountDetails,
		Status:         domain.WalletActive,
	}
	bal := &domain.Balance{
		ID:        domain.NewID(domain.PrefixBalance),
		WalletID:  wallet.ID,
		Available: money.Zero(),
		Pending:   money.Zero(),
	}

	err = h.store.WithinTx(r.Context(), func(q store.Querier) error {
		if _, err := q.GetWalletByUserAndCurrency(r.Context(), user.ID, req.Currency); err == nil {
			return domain.ErrConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := q.InsertWallet(r.Context(), wallet); err != nil {
			return err
		}
		return q.InsertBalance(r.Context(), bal)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			respondWithError(w, http.StatusConflict, "user already holds a wallet in this currency")
			return
		}
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, walletResponse{Wallet: wallet, Balance: bal})
}

func (h *Handler) GetWalletHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wallet, err := h.store.GetWallet(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "wallet not found")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	bal, err := h.store.GetBalanceForUpdate(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		// No movement yet; report a zeroed position rather than a 404.
		bal = &domain.Balance{WalletID: id, Available: money.Zero(), Pending: money.Zero()}
	} else if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, walletResponse{Wallet: wallet, Balance: bal})
}

func (h *Handler) ListLedgerEntriesHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.store.GetWallet(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "wallet not found")
			return
		}
		respondDomainError(w, err)
		return
	}

	entries, err := h.store.ListLedgerEntriesByWallet(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ledger_entries": entries})
}
