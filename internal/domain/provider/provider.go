package provider

import (
	"context"
	"time"
)

// PaymentProvider is the remote billing service. Its failures never block
// local state changes.
type PaymentProvider interface {
	// CreateSubscriptionCheckout returns a hosted payment link for a plan product
	CreateSubscriptionCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)

	// CreateOneTimeCheckout returns a hosted payment link for a one-off product
	CreateOneTimeCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)

	// GetSubscription fetches the provider's view of a subscription
	GetSubscription(ctx context.Context, subscriptionID string) (*RemoteSubscription, error)

	// CancelSubscription cancels the subscription remotely
	CancelSubscription(ctx context.Context, subscriptionID string) error

	// GetProviderName returns the provider name
	GetProviderName() string
}

// Customer identifies the paying user to the provider.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CheckoutRequest is a provider-agnostic checkout request
type CheckoutRequest struct {
	ProductID string            `json:"product_id"`
	Quantity  int               `json:"quantity"`
	Customer  Customer          `json:"customer"`
	ReturnURL string            `json:"return_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CheckoutResponse carries the hosted payment link
type CheckoutResponse struct {
	ID          string `json:"id"`
	PaymentLink string `json:"payment_link"`
}

// RemoteSubscription is the provider's subscription state
type RemoteSubscription struct {
	ID              string     `json:"subscription_id"`
	Status          string     `json:"status"`
	ProductID       string     `json:"product_id"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypeDodo ProviderType = "dodopayments"
)

// ProviderError is returned for failed provider calls
type ProviderError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
