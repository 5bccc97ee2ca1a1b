// Package kyc checks identities against the Adjutor Karma blacklist.
package kyc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Status string

const (
	StatusClear       Status = "clear"
	StatusBlacklisted Status = "blacklisted"
	StatusError       Status = "error"
)

// Result is a lookup outcome plus the (redacted) provider payload kept for
// the onboarding record.
type Result struct {
	Status  Status
	Payload KarmaLookupResponse
}

type Checker interface {
	Check(ctx context.Context, identity string) Result
}

type KarmaLookupResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    *KarmaRecord `json:"data"`
}

type KarmaRecord struct {
	KarmaIdentity      string  `json:"karma_identity"`
	AmountInContention *string `json:"amount_in_contention"`
	Reason             *string `json:"reason"`
	DefaultDate        *string `json:"default_date"`
}

// AdjutorClient talks to the Adjutor Karma verification API. Lookup failures
// degrade to StatusError rather than propagating, so onboarding policy can
// decide what to do with an unavailable provider.
type AdjutorClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAdjutorClient(baseURL, apiKey string) *AdjutorClient {
	if baseURL == "" {
		baseURL = "https://adjutor.lendsqr.com/v2"
	}
	return &AdjutorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *AdjutorClient) Check(ctx context.Context, identity string) Result {
	payload := c.lookup(ctx, identity)

	var status Status
	switch {
	case payload.Status == "success" && payload.Data != nil:
		status = StatusBlacklisted
	case payload.Status == "success":
		status = StatusClear
	default:
		status = StatusError
	}

	return Result{Status: status, Payload: redactIdentity(payload)}
}

func (c *AdjutorClient) lookup(ctx context.Context, identity string) KarmaLookupResponse {
	if c.apiKey == "" {
		return KarmaLookupResponse{Status: "error", Message: "missing Adjutor API key"}
	}

	endpoint := fmt.Sprintf("%s/verification/karma/%s", c.baseURL, url.PathEscape(identity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return KarmaLookupResponse{Status: "error", Message: "building Adjutor request failed"}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return KarmaLookupResponse{Status: "error", Message: "Adjutor request failed"}
	}
	defer resp.Body.Close()

	var payload KarmaLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return KarmaLookupResponse{Status: "error", Message: "invalid response from Adjutor"}
	}
	return payload
}

// redactIdentity strips the looked-up identity from the stored payload.
func redactIdentity(payload KarmaLookupResponse) KarmaLookupResponse {
	if payload.Data == nil {
		return payload
	}
	data := *payload.Data
	data.KarmaIdentity = "redacted"
	payload.Data = &data
	return payload
}

// Static is a fixed-answer Checker for tests and local development.
type Static struct {
	Blacklisted map[string]bool
}

func (s *Static) Check(_ context.Context, identity string) Result {
	if s.Blacklisted[identity] {
		return Result{Status: StatusBlacklisted, Payload: KarmaLookupResponse{Status: "success", Data: &KarmaRecord{KarmaIdentity: "redacted"}}}
	}
	return Result{Status: StatusClear, Payload: KarmaLookupResponse{Status: "success"}}
}
