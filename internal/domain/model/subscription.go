package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubscriptionStatus is the local lifecycle state. CANCELLED and EXPIRED are terminal.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
)

// IsTerminal reports whether no further transitions are expected.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

// StatusFromProvider maps a provider status string to the local status.
func StatusFromProvider(status string) SubscriptionStatus {
	switch strings.ToLower(status) {
	case "active":
		return SubscriptionStatusActive
	case "cancelled", "canceled":
		return SubscriptionStatusCancelled
	case "suspended", "on_hold":
		return SubscriptionStatusSuspended
	case "expired":
		return SubscriptionStatusExpired
	default:
		return SubscriptionStatusPending
	}
}

// CurrentSubscriptionStatuses are the states that count as a user's current subscription.
var CurrentSubscriptionStatuses = []SubscriptionStatus{SubscriptionStatusActive, SubscriptionStatusSuspended}

// Subscription represents a user's subscription
type Subscription struct {
	ID                     string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID                 string             `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ExternalSubscriptionID string             `gorm:"size:100;not null;uniqueIndex" json:"external_subscription_id"`
	ExternalPlanID         string             `gorm:"size:100" json:"external_plan_id"`
	Plan                   Plan               `gorm:"size:20;not null" json:"plan"`
	Status                 SubscriptionStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	BillingCycle           BillingCycle       `gorm:"size:20;not null;default:'MONTHLY'" json:"billing_cycle"`
	Amount                 decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Currency               string             `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CreditsIncluded        int                `gorm:"not null;default:0" json:"credits_included"`
	NextBillingDate        *time.Time         `json:"next_billing_date,omitempty"`
	CancelledAt            *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt              time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`

	// Relations
	Payments []Payment `gorm:"foreignKey:SubscriptionID" json:"payments,omitempty"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
