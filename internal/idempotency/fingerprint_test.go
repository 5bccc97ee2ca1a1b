package idempotency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonife/walletcore/internal/idempotency"
)

func TestFingerprintIgnoresKeyOrder(t *testing.T) {
	a := idempotency.Fingerprint("POST", "/api/v1/transfers", nil, nil,
		[]byte(`{"sender_wallet_id":"wal-1","receiver_wallet_id":"wal-2","amount":"10.00"}`))
	b := idempotency.Fingerprint("POST", "/api/v1/transfers", nil, nil,
		[]byte(`{"amount":"10.00","receiver_wallet_id":"wal-2","sender_wallet_id":"wal-1"}`))

	assert.Equal(t, a, b, "semantically identical bodies must hash identically")
}

func TestFingerprintSensitivity(t *testing.T) {
	base := idempotency.Fingerprint("POST", "/api/v1/transfers", nil, nil, []byte(`{"amount":"10.00"}`))

	differentBody := idempotency.Fingerprint("POST", "/api/v1/transfers", nil, nil, []byte(`{"amount":"10.01"}`))
	assert.NotEqual(t, base, differentBody)

	differentPath := idempotency.Fingerprint("POST", "/api/v1/withdrawals", nil, nil, []byte(`{"amount":"10.00"}`))
	assert.NotEqual(t, base, differentPath)

	differentMethod := idempotency.Fingerprint("PUT", "/api/v1/transfers", nil, nil, []byte(`{"amount":"10.00"}`))
	assert.NotEqual(t, base, differentMethod)

	withParams := idempotency.Fingerprint("POST", "/api/v1/transfers", map[string]string{"id": "txn-1"}, nil, []byte(`{"amount":"10.00"}`))
	assert.NotEqual(t, base, withParams)
}

func TestFingerprintNonJSONBody(t *testing.T) {
	a := idempotency.Fingerprint("POST", "/p", nil, nil, []byte("not json"))
	b := idempotency.Fingerprint("POST", "/p", nil, nil, []byte("not json"))
	c := idempotency.Fingerprint("POST", "/p", nil, nil, []byte("still not json"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFingerprintEmptyBody(t *testing.T) {
	a := idempotency.Fingerprint("POST", "/p", nil, nil, nil)
	b := idempotency.Fingerprint("POST", "/p", nil, nil, []byte{})
	assert.Equal(t, a, b, "nil and empty bodies are the same request shape")
}
