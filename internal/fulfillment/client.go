// Package fulfillment talks to the external pizza factory. One order
// placement makes exactly one delegation attempt; there is no retry.
package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrRejected indicates the factory did not confirm the order: a non-success
// status, a transport failure, or a malformed response body all collapse
// into this one failure class.
var ErrRejected = errors.New("fulfillment: factory did not confirm order")

// Diner is the identity snapshot sent alongside the order.
type Diner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item is one order line as the factory expects it.
type Item struct {
	MenuID      string `json:"menu_id"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// Ticket is the delegation payload: the persisted order, the diner snapshot,
// and a signed identity assertion for the caller.
type Ticket struct {
	Diner    Diner  `json:"diner"`
	Identity string `json:"identity"`
	Order    Order  `json:"order"`
}

// Order describes the persisted order being delegated.
type Order struct {
	ID          string `json:"id"`
	FranchiseID string `json:"franchise_id"`
	StoreID     string `json:"store_id"`
	Items       []Item `json:"items"`
	Total       int64  `json:"total"`
}

// Result carries the factory's confirmation: a fulfillment token on success,
// and whatever tracking reference the factory returned in either case.
type Result struct {
	Token  string
	Report string
}

// Client is the delegation contract the order coordinator consumes.
type Client interface {
	Fulfill(ctx context.Context, t Ticket) (Result, error)
}

// HTTPClient implements Client against the factory's JSON endpoint.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// Option configures HTTPClient behavior.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client (useful for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// NewHTTPClient creates a factory client with sensible defaults.
func NewHTTPClient(endpoint, apiKey string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type factoryResponse struct {
	Token   string `json:"jwt"`
	Report  string `json:"report_url"`
	Message string `json:"message"`
}

// Fulfill sends the ticket to the factory. Success requires a 2xx status
// and a non-empty fulfillment token; everything else returns ErrRejected
// with whatever tracking reference could be salvaged from the response.
func (h *HTTPClient) Fulfill(ctx context.Context, t Ticket) (Result, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return Result{}, fmt.Errorf("encode ticket: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %v", ErrRejected, err)
	}

	var parsed factoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: malformed response", ErrRejected)
	}
	result := Result{Token: parsed.Token, Report: parsed.Report}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || parsed.Token == "" {
		return Result{Report: parsed.Report}, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return result, nil
}
