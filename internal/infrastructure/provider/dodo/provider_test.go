package dodo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"go.uber.org/zap"
)

func TestDodoProvider_CreateSubscriptionCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/subscriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "prod_std_m", body["product_id"])
		assert.Equal(t, true, body["payment_link"])
		assert.Equal(t, float64(1), body["quantity"])
		assert.Equal(t, "buyer@example.com", body["customer"].(map[string]interface{})["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"subscription_id":"sub_123","payment_link":"https://checkout.example.com/sub_123"}`))
	}))
	defer server.Close()

	p := NewDodoProvider("test-key", server.URL+"/", zap.NewNop())

	resp, err := p.CreateSubscriptionCheckout(context.Background(), &provider.CheckoutRequest{
		ProductID: "prod_std_m",
		Customer:  provider.Customer{Email: "buyer@example.com", Name: "Buyer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_123", resp.ID)
	assert.Equal(t, "https://checkout.example.com/sub_123", resp.PaymentLink)
}

func TestDodoProvider_CreateOneTimeCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments", r.URL.Path)

		var body paymentCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.ProductCart, 1)
		assert.Equal(t, "prod_pack_720", body.ProductCart[0].ProductID)
		assert.Equal(t, "credit_pack", body.Metadata["type"])

		_, _ = w.Write([]byte(`{"payment_id":"pay_1","payment_link":"https://checkout.example.com/pay_1"}`))
	}))
	defer server.Close()

	p := NewDodoProvider("test-key", server.URL, zap.NewNop())

	resp, err := p.CreateOneTimeCheckout(context.Background(), &provider.CheckoutRequest{
		ProductID: "prod_pack_720",
		Metadata:  map[string]string{"type": "credit_pack"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", resp.ID)
}

func TestDodoProvider_GetSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/subscriptions/sub_9", r.URL.Path)
		_, _ = w.Write([]byte(`{"subscription_id":"sub_9","status":"on_hold","product_id":"prod_pro_m","next_billing_date":"2026-11-01T00:00:00Z"}`))
	}))
	defer server.Close()

	p := NewDodoProvider("test-key", server.URL, zap.NewNop())

	sub, err := p.GetSubscription(context.Background(), "sub_9")
	require.NoError(t, err)
	assert.Equal(t, "sub_9", sub.ID)
	assert.Equal(t, "on_hold", sub.Status)
	require.NotNil(t, sub.NextBillingDate)
	assert.Nil(t, sub.CancelledAt)
}

func TestDodoProvider_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/subscriptions/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"Subscription not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	p := NewDodoProvider("test-key", server.URL, zap.NewNop())

	_, err := p.GetSubscription(context.Background(), "missing")
	var providerErr *provider.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "NOT_FOUND", providerErr.Code)
	assert.Equal(t, http.StatusNotFound, providerErr.StatusCode)

	err = p.CancelSubscription(context.Background(), "sub_1")
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "HTTP_502", providerErr.Code)
	assert.Equal(t, "Bad Gateway", providerErr.Message)
}

func TestDodoProvider_CancelSubscription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cancelled", body["status"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewDodoProvider("test-key", server.URL, zap.NewNop())
	assert.NoError(t, p.CancelSubscription(context.Background(), "sub_1"))
}
