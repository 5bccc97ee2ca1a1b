package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/kyc"
	"github.com/tonife/walletcore/internal/money"
	"github.com/tonife/walletcore/internal/store"
)

type createUserRequest struct {
	Email          string             `json:"email"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	PhoneNumber    string             `json:"phone_number"`
	BVN            string             `json:"bvn"`
	Currency       string             `json:"currency"`
	AccountDetails domain.BankDetails `json:"account_details"`
}

type createUserResponse struct {
	User   *domain.User   `json:"user"`
	Wallet *domain.Wallet `json:"wallet"`
}

// CreateUserHandler onboards a user and opens their first wallet. The karma
// blacklist check runs before any row is written; a blacklisted identity is
// rejected outright. A provider outage does not block onboarding.
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDomainError(w, err)
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		respondWithError(w, http.StatusUnprocessableEntity, "email, first_name and last_name are required")
		return
	}
	if req.Currency == "" {
		req.Currency = "NGN"
	}

	identity := req.BVN
	if identity == "" {
		identity = req.Email
	}
	if check := h.kyc.Check(r.Context(), identity); check.Status == kyc.StatusBlacklisted {
		respondWithError(w, http.StatusForbidden, "identity is on the karma blacklist")
		return
	}

	user := &domain.User{
		ID:          domain.NewID(domain.PrefixUser),
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Status:      domain.UserActive,
	}
	wallet := &domain.Wallet{
		ID:             domain.NewID(domain.PrefixWallet),
		UserID:         user.ID,
		Currency:       req.Currency,
		AccountDetails: req.AccountDetails,
		Status:         domain.WalletActive,
	}

	err := h.store.WithinTx(r.Context(), func(q store.Querier) error {
		if err := q.InsertUser(r.Context(), user); err != nil {
			return err
		}
		if err := q.InsertWallet(r.Context(), wallet); err != nil {
			return err
		}
		return q.InsertBalance(r.Context(), &domain.Balance{
			ID:        domain.NewID(domain.PrefixBalance),
			WalletID:  wallet.ID,
			Available: money.Zero(),
			Pending:   money.Zero(),
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondWithError(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, createUserResponse{User: user, Wallet: wallet})
}

func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
