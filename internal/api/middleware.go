package api

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tonife/walletcore/internal/domain"
	"github.com/tonife/walletcore/internal/idempotency"
)

type contextKey string

const idempotencyKeyContextKey contextKey = "idempotency-key"

func withIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyContextKey, key)
}

// idempotencyKeyFrom returns the key reserved for this request, empty when
// the handler runs outside the idempotent middleware.
func idempotencyKeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyContextKey).(string)
	return key
}

// responseRecorder tees the response so the idempotency layer can persist
// what was sent to the client.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w}
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// idempotent enforces the Idempotency-Key protocol around a mutating
// handler. The key is reserved before the handler runs; a cached terminal
// response is replayed verbatim without invoking the handler; after a fresh
// run the response is written back as the key's terminal record.
func (h *Handler) idempotent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			respondWithError(w, http.StatusBadRequest, "Missing Idempotency-Key header")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Stream read error")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		fingerprint := idempotency.Fingerprint(r.Method, r.URL.Path, mux.Vars(r), r.URL.Query(), body)
		begin, err := h.coord.Begin(r.Context(), key, fingerprint)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if begin.Replay {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.WriteHeader(http.StatusOK)
			w.Write(begin.Payload)
			return
		}

		rec := newRecorder(w)
		next(rec, r.WithContext(withIdempotencyKey(r.Context(), key)))

		status := domain.IdempotencySuccess
		if rec.statusCode() >= 400 {
			status = domain.IdempotencyFailed
		}
		h.coord.Finish(r.Context(), key, status, rec.body.Bytes())
	}
}
