package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookStatus tracks one delivery. Completed deliveries are skipped on
// redelivery and recently claimed ones are reported as in flight.
type WebhookStatus string

const (
	WebhookStatusPending    WebhookStatus = "pending"
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusCompleted  WebhookStatus = "completed"
	WebhookStatusFailed     WebhookStatus = "failed"
)

// WebhookEvent records a payment provider delivery, keyed by the
// provider's message id.
type WebhookEvent struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID            string         `gorm:"size:255;not null;uniqueIndex" json:"event_id"`
	EventType          string         `gorm:"size:100;not null;index" json:"event_type"`
	Status             WebhookStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Payload            datatypes.JSON `json:"payload"`
	ProcessingAttempts int            `gorm:"not null;default:0" json:"processing_attempts"`
	ClaimedAt          *time.Time     `json:"claimed_at,omitempty"`
	LastError          *string        `json:"last_error,omitempty"`
	ProcessedAt        *time.Time     `json:"processed_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
