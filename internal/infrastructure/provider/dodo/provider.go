package dodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// DodoProvider talks to the DodoPayments REST API.
type DodoProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewDodoProvider creates a new DodoPayments provider
func NewDodoProvider(apiKey, baseURL string, logger *zap.Logger) *DodoProvider {
	return &DodoProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}
}

// WithHTTPClient replaces the HTTP client
func (d *DodoProvider) WithHTTPClient(client *http.Client) *DodoProvider {
	d.client = client
	return d
}

// GetProviderName returns the provider name
func (d *DodoProvider) GetProviderName() string {
	return string(provider.ProviderTypeDodo)
}

// billingAddress is sent with every checkout; the hosted page collects the real one.
type billingAddress struct {
	City    string `json:"city"`
	Country string `json:"country"`
	State   string `json:"state"`
	Street  string `json:"street"`
	Zipcode string `json:"zipcode"`
}

var defaultBilling = billingAddress{
	City:    "Default City",
	Country: "US",
	State:   "CA",
	Street:  "123 Default Street",
	Zipcode: "90210",
}

type productItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type subscriptionCreateRequest struct {
	Billing     billingAddress    `json:"billing"`
	Customer    provider.Customer `json:"customer"`
	ProductID   string            `json:"product_id"`
	Quantity    int               `json:"quantity"`
	PaymentLink bool              `json:"payment_link"`
	ReturnURL   string            `json:"return_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paymentCreateRequest struct {
	Billing     billingAddress    `json:"billing"`
	Customer    provider.Customer `json:"customer"`
	ProductCart []productItem     `json:"product_cart"`
	PaymentLink bool              `json:"payment_link"`
	ReturnURL   string            `json:"return_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type checkoutResult struct {
	SubscriptionID string `json:"subscription_id"`
	PaymentID      string `json:"payment_id"`
	PaymentLink    string `json:"payment_link"`
}

// CreateSubscriptionCheckout creates a subscription with a hosted payment link
// POST /subscriptions
func (d *DodoProvider) CreateSubscriptionCheckout(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	d.logger.Info("DodoProvider: Creating subscription checkout",
		zap.String("product_id", req.ProductID),
		zap.String("customer_email", req.Customer.Email))

	body := subscriptionCreateRequest{
		Billing:     defaultBilling,
		Customer:    req.Customer,
		ProductID:   req.ProductID,
		Quantity:    quantity(req.Quantity),
		PaymentLink: true,
		ReturnURL:   req.ReturnURL,
		Metadata:    req.Metadata,
	}

	var result checkoutResult
	if err := d.do(ctx, http.MethodPost, "/subscriptions", body, &result); err != nil {
		return nil, err
	}

	d.logger.Info("DodoProvider: Subscription checkout created",
		zap.String("subscription_id", result.SubscriptionID))

	return &provider.CheckoutResponse{ID: result.SubscriptionID, PaymentLink: result.PaymentLink}, nil
}

// CreateOneTimeCheckout creates a one-off payment link
// POST /payments
func (d *DodoProvider) CreateOneTimeCheckout(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	d.logger.Info("DodoProvider: Creating one-time checkout",
		zap.String("product_id", req.ProductID),
		zap.String("customer_email", req.Customer.Email))

	body := paymentCreateRequest{
		Billing:     defaultBilling,
		Customer:    req.Customer,
		ProductCart: []productItem{{ProductID: req.ProductID, Quantity: quantity(req.Quantity)}},
		PaymentLink: true,
		ReturnURL:   req.ReturnURL,
		Metadata:    req.Metadata,
	}

	var result checkoutResult
	if err := d.do(ctx, http.MethodPost, "/payments", body, &result); err != nil {
		return nil, err
	}

	d.logger.Info("DodoProvider: One-time checkout created",
		zap.String("payment_id", result.PaymentID))

	return &provider.CheckoutResponse{ID: result.PaymentID, PaymentLink: result.PaymentLink}, nil
}

// GetSubscription retrieves a subscription
// GET /subscriptions/{id}
func (d *DodoProvider) GetSubscription(ctx context.Context, subscriptionID string) (*provider.RemoteSubscription, error) {
	var result provider.RemoteSubscription
	if err := d.do(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelSubscription cancels a subscription
// PATCH /subscriptions/{id}
func (d *DodoProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	d.logger.Info("DodoProvider: Cancelling subscription",
		zap.String("subscription_id", subscriptionID))

	body := map[string]string{"status": "cancelled"}
	return d.do(ctx, http.MethodPatch, "/subscriptions/"+subscriptionID, body, nil)
}

// do sends a JSON request and decodes a 2xx response into out
func (d *DodoProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &provider.ProviderError{
				Code:    "MARSHAL_ERROR",
				Message: "Failed to prepare request",
				Details: err.Error(),
			}
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return &provider.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.logger.Error("DodoProvider: Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &provider.ProviderError{
			Code:    "API_ERROR",
			Message: "DodoPayments API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Code:       "RESPONSE_ERROR",
			Message:    "Failed to read response",
			Details:    err.Error(),
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		if errResp.Code == "" {
			errResp.Code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		if errResp.Message == "" {
			errResp.Message = http.StatusText(resp.StatusCode)
		}

		d.logger.Error("DodoProvider: API returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		return &provider.ProviderError{
			Code:       errResp.Code,
			Message:    errResp.Message,
			Details:    string(respBody),
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Code:       "PARSE_ERROR",
			Message:    "Failed to parse response",
			Details:    err.Error(),
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

func quantity(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
