package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditUsage is an append-only ledger entry. Positive amounts are
// consumption, negative amounts are grants. A credit pack payment id can
// be granted once.
type CreditUsage struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;index:idx_credit_usages_user_created,priority:1" json:"user_id"`
	CreditsUsed int       `gorm:"not null" json:"credits_used"`
	Action      Action    `gorm:"size:50;not null;index;uniqueIndex:idx_credit_usages_purchase_resource,priority:1,where:action = 'credit_purchase'" json:"action"`
	Description string    `gorm:"size:255" json:"description"`
	ResourceID  *string   `gorm:"size:100;uniqueIndex:idx_credit_usages_purchase_resource,priority:2" json:"resource_id,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_credit_usages_user_created,priority:2" json:"created_at"`
}

func (CreditUsage) TableName() string {
	return "credit_usages"
}

func (c *CreditUsage) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
