package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/StripeSync/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.stripe.com"

// Client talks to the Stripe REST API. All mutating endpoints take
// form-encoded bodies, so requests go through FormValues.Encode.
type Client struct {
	APIKey  string
	BaseURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from STRIPE_API_KEY / STRIPE_API_BASE_URL.
// The key has no baked-in default; an empty key fails on first use.
func NewClientFromEnv() *Client {
	return &Client{
		APIKey:  strings.TrimSpace(env.GetEnv("STRIPE_API_KEY", "")),
		BaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) postForm(ctx context.Context, path string, form FormValues) (json.RawMessage, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("STRIPE_API_KEY is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return json.RawMessage(body), nil
}

// CreateCustomer registers a remote customer tagged with the local user id.
func (c *Client) CreateCustomer(ctx context.Context, email, name, userRef string) (*Customer, error) {
	form := FormValues{}.
		Add("email", email).
		Add("name", name).
		Add("metadata", FormValues{}.Add("user_id", userRef))

	raw, err := c.postForm(ctx, "/v1/customers", form)
	if err != nil {
		return nil, err
	}

	var out Customer
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("stripe customer response missing id")
	}
	return &out, nil
}

// CreateCheckoutSession submits assembled session parameters and relays the
// raw response body to the caller.
func (c *Client) CreateCheckoutSession(ctx context.Context, params FormValues) (json.RawMessage, error) {
	return c.postForm(ctx, "/v1/checkout/sessions", params)
}

// CreatePortalSession opens a billing portal session for a customer.
func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (json.RawMessage, error) {
	return c.postForm(ctx, "/v1/billing_portal/sessions", FormValues{}.Add("customer", customerID))
}
