package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint hashes the shape of an inbound request: method, path, path
// params, query params, and body. The body is decoded and re-encoded so that
// object key order never affects the hash; encoding/json marshals map keys in
// sorted order, which gives us the canonical form for free.
func Fingerprint(method, path string, params map[string]string, query map[string][]string, body []byte) string {
	payload := map[string]any{
		"method": method,
		"path":   path,
		"params": params,
		"query":  query,
		"body":   canonicalBody(body),
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		// Only reachable with a non-JSON-encodable body value, which
		// canonicalBody never produces; hash the raw body instead.
		serialized = body
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}

func canonicalBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Non-JSON bodies participate verbatim.
		return string(body)
	}
	return decoded
}
