package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/engine"
	"github.com/tonife/walletcore/internal/store"
)

func (h *Handler) CreateFundingHandler(w http.ResponseWriter, r *http.Request) {
	var p engine.FundParams
	if err := decodeJSON(r, &p); err != nil {
		respondDomainError(w, err)
		return
	}
	p.IdempotencyKey = idempotencyKeyFrom(r.Context())

	result, err := h.engine.Fund(r.Context(), p)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) CreateTransferHandler(w http.ResponseWriter, r *http.Request) {
	var p engine.TransferParams
	if err := decodeJSON(r, &p); err != nil {
		respondDomainError(w, err)
		return
	}
	p.IdempotencyKey = idempotencyKeyFrom(r.Context())

	result, err := h.engine.Transfer(r.Context(), p)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) CreateWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	var p engine.WithdrawParams
	if err := decodeJSON(r, &p); err != nil {
		respondDomainError(w, err)
		return
	}
	p.IdempotencyKey = idempotencyKeyFrom(r.Context())

	result, err := h.engine.Withdraw(r.Context(), p)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	intent, err := h.store.GetIntent(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "transaction intent not found")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, intent)
}

type executeRequest struct {
	Type domain.IntentType `json:"type"`
}

// ExecuteTransactionHandler re-drives an intent stuck in its initial state.
func (h *Handler) ExecuteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDomainError(w, err)
		return
	}
	if req.Type == "" {
		respondWithError(w, http.StatusUnprocessableEntity, "type is required")
		return
	}

	result, err := h.engine.Execute(r.Context(), id, req.Type)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) ListAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.store.GetIntent(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "transaction intent not found")
			return
		}
		respondDomainError(w, err)
		return
	}

	attempts, err := h.store.ListExecutionAttemptsByIntent(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"execution_attempts": attempts})
}

func (h *Handler) ListAuditLogsHandler(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	entityID := r.URL.Query().Get("entity_id")
	if entityType == "" || entityID == "" {
		respondWithError(w, http.StatusUnprocessableEntity, "entity_type and entity_id query parameters are required")
		return
	}

	logs, err := h.store.ListAuditLogsByEntity(r.Context(), domain.EntityType(entityType), entityID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"audit_logs": logs})
}
