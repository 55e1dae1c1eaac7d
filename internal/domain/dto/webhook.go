package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Webhook event types sent by the payment provider.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionCanceled  = "subscription.canceled"
	EventSubscriptionSuspended = "subscription.suspended"
	EventPaymentCompleted      = "payment.completed"
	EventPaymentFailed         = "payment.failed"
)

// MetadataTypeCreditPack marks one-off credit pack purchases.
const MetadataTypeCreditPack = "credit_pack"

// WebhookEvent is the provider's delivery envelope.
type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type WebhookData struct {
	ID string `json:"id"`
	// SubscriptionID and PaymentID are sent by newer payload versions and
	// take precedence over ID when present.
	SubscriptionID  string                 `json:"subscription_id,omitempty"`
	PaymentID       string                 `json:"payment_id,omitempty"`
	Status          string                 `json:"status"`
	Customer        WebhookCustomer        `json:"customer"`
	ProductID       string                 `json:"product_id"`
	Amount          decimal.Decimal        `json:"amount"`
	Currency        string                 `json:"currency"`
	BillingCycle    string                 `json:"billing_cycle,omitempty"`
	// Timestamps stay raw so one odd value cannot reject the delivery.
	NextBillingDate string                 `json:"next_billing_date,omitempty"`
	CancelledAt     string                 `json:"cancelled_at,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// SubscriptionRef is the external subscription id the event refers to.
func (d WebhookData) SubscriptionRef() string {
	if d.SubscriptionID != "" {
		return d.SubscriptionID
	}
	return d.ID
}

// PaymentRef is the external payment id the event refers to.
func (d WebhookData) PaymentRef() string {
	if d.PaymentID != "" {
		return d.PaymentID
	}
	return d.ID
}

// MetadataType returns metadata.type when it is a string.
func (d WebhookData) MetadataType() string {
	if t, ok := d.Metadata["type"].(string); ok {
		return t
	}
	return ""
}

// MetadataJSON encodes the metadata for storage. Empty metadata yields nil.
func (d WebhookData) MetadataJSON() []byte {
	if len(d.Metadata) == 0 {
		return nil
	}
	raw, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil
	}
	return raw
}

// webhookTimeLayouts are tried in order by ParseWebhookTime.
var webhookTimeLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// ParseWebhookTime parses an RFC3339 or date-only timestamp. A blank value
// yields nil without an error.
func ParseWebhookTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range webhookTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", value)
}
