package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is an append-only billing event tied to a subscription.
type Payment struct {
	ID                string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubscriptionID    string          `gorm:"type:varchar(36);not null;index" json:"subscription_id"`
	ExternalPaymentID string          `gorm:"size:100;index" json:"external_payment_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Currency          string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status            PaymentStatus   `gorm:"size:20;not null" json:"status"`
	Metadata          datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
