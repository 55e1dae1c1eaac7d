package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
)

// SubscriptionRepository defines the interface for subscription data operations.
// Methods that also touch the owning user run in one transaction.
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Subscription, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Subscription, error)

	// FindCurrentByUser returns the newest ACTIVE or SUSPENDED subscription
	// with up to paymentLimit of its newest payments.
	FindCurrentByUser(ctx context.Context, userID string, paymentLimit int) (*model.Subscription, error)

	// CreateWithPlan inserts the subscription and resets the user to its
	// plan and credits.
	CreateWithPlan(ctx context.Context, sub *model.Subscription) error

	// Reactivate marks an existing subscription ACTIVE with new billing
	// fields and resets the user to its plan and credits.
	Reactivate(ctx context.Context, sub *model.Subscription) error

	// CancelAndDowngrade marks the subscription CANCELLED and moves the
	// user to FREE without touching credits_used.
	CancelAndDowngrade(ctx context.Context, id string, cancelledAt time.Time) (*model.Subscription, error)

	UpdateStatus(ctx context.Context, id string, status model.SubscriptionStatus) error
	UpdateStatusByExternalID(ctx context.Context, externalID string, status model.SubscriptionStatus) (int64, error)

	// ListByStatuses pages through subscriptions ordered by id, starting
	// after afterID.
	ListByStatuses(ctx context.Context, statuses []model.SubscriptionStatus, afterID string, limit int) ([]model.Subscription, error)
}

// PaymentRepository records billing events.
type PaymentRepository interface {
	// RecordWithStatus inserts the payment and sets its subscription status
	// in one transaction.
	RecordWithStatus(ctx context.Context, payment *model.Payment, status model.SubscriptionStatus) error
	ListBySubscription(ctx context.Context, subscriptionID string, limit int) ([]model.Payment, error)
}

// DeliveryState is what Begin found for a delivery id.
type DeliveryState int

const (
	// DeliveryClaimed means the caller now owns the delivery and must apply it.
	DeliveryClaimed DeliveryState = iota
	// DeliveryCompleted means an earlier attempt already applied it.
	DeliveryCompleted
	// DeliveryInFlight means another attempt claimed it recently and has
	// not finished.
	DeliveryInFlight
)

// WebhookEventRepository tracks inbound deliveries by provider message id.
type WebhookEventRepository interface {
	// Begin records the delivery and claims it unless it completed or is
	// still being processed. A stale claim is taken over.
	Begin(ctx context.Context, eventID, eventType string, payload []byte) (DeliveryState, error)
	MarkCompleted(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
}
