package stripe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		APIKey:     "sk_test_123",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}
}

func TestCreateCustomer(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody, _ = url.ParseQuery(string(raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cus_123","email":"jane@example.com","name":"Jane"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	customer, err := client.CreateCustomer(context.Background(), "jane@example.com", "Jane", "42")
	require.NoError(t, err)

	assert.Equal(t, "cus_123", customer.ID)
	assert.Equal(t, "/v1/customers", gotPath)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "jane@example.com", gotBody.Get("email"))
	assert.Equal(t, "Jane", gotBody.Get("name"))
	assert.Equal(t, "42", gotBody.Get("metadata[user_id]"))
}

func TestCreateCustomerMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateCustomer(context.Background(), "jane@example.com", "Jane", "42")
	assert.Error(t, err)
}

func TestCreateCheckoutSessionRelaysRawBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		_, _ = w.Write([]byte(`{"id":"cs_123","url":"https://checkout.example/s/cs_123"}`))
	}))
	defer srv.Close()

	params := FormValues{}.
		Add("customer", "cus_123").
		Add("mode", SessionModeSubscription).
		Add("line_items", []FormValues{
			FormValues{}.Add("price", "price_1").Add("quantity", 1),
		})

	raw, err := newTestClient(srv).CreateCheckoutSession(context.Background(), params)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"cs_123","url":"https://checkout.example/s/cs_123"}`, string(raw))
	assert.Contains(t, gotBody, "customer=cus_123")
	assert.Contains(t, gotBody, "line_items%5B0%5D%5Bprice%5D=price_1")
}

func TestCreatePortalSession(t *testing.T) {
	var gotPath string
	var gotBody url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody, _ = url.ParseQuery(string(raw))
		_, _ = w.Write([]byte(`{"id":"bps_123","url":"https://billing.example/p/bps_123"}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv).CreatePortalSession(context.Background(), "cus_123")
	require.NoError(t, err)

	assert.Equal(t, "/v1/billing_portal/sessions", gotPath)
	assert.Equal(t, "cus_123", gotBody.Get("customer"))
	assert.Contains(t, string(raw), "bps_123")
}

func TestPostFormErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"card declined"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreatePortalSession(context.Background(), "cus_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=402")
}

func TestPostFormMissingAPIKey(t *testing.T) {
	client := &Client{BaseURL: "http://localhost:0"}
	_, err := client.CreatePortalSession(context.Background(), "cus_123")
	assert.Error(t, err)
}
