// Package billing is the HTTP client for the hosted checkout provider.
// The checkout URL is an opaque redirect target; VerifySession is the sole
// source of truth for whether a payment actually completed.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"reglens/internal/pricing"
)

// Client talks to the billing provider's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a billing API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckoutParams describes the session to open.
type CheckoutParams struct {
	AccountID  string             `json:"account_id"`
	Email      string             `json:"email"`
	LineItems  []pricing.LineItem `json:"line_items"`
	SuccessURL string             `json:"success_url"`
	CancelURL  string             `json:"cancel_url"`
}

// CheckoutSession is the provider's answer: where to send the user.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// VerifyResult reports whether the payment behind a session completed.
type VerifyResult struct {
	SessionID string `json:"session_id"`
	Success   bool   `json:"success"`
}

// Checkout is the subset of the provider the finalize orchestrator needs.
type Checkout interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	VerifySession(ctx context.Context, sessionID string) (*VerifyResult, error)
}

// CreateCheckoutSession opens a hosted checkout session for the line items.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	var resp CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", params, &resp); err != nil {
		return nil, err
	}
	if resp.CheckoutURL == "" {
		return nil, fmt.Errorf("billing provider returned no checkout URL")
	}
	return &resp, nil
}

// VerifySession asks the provider whether the session's payment completed.
func (c *Client) VerifySession(ctx context.Context, sessionID string) (*VerifyResult, error) {
	var resp VerifyResult
	path := fmt.Sprintf("/v1/checkout/sessions/%s/verify", url.PathEscape(sessionID))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading billing response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing provider returned %d: %s", resp.StatusCode, body)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding billing response: %w", err)
	}
	return nil
}
