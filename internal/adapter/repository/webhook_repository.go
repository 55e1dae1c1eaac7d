package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookClaimTimeout is how long a processing delivery blocks redeliveries.
// Older claims belong to attempts that died and are taken over.
const webhookClaimTimeout = 5 * time.Minute

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewWebhookRepository creates a new webhook event repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Begin saves the delivery if it is new and claims it for processing
func (r *webhookRepository) Begin(ctx context.Context, eventID, eventType string, payload []byte) (domainRepo.DeliveryState, error) {
	state := domainRepo.DeliveryClaimed
	now := r.now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event := &model.WebhookEvent{
			EventID:   eventID,
			EventType: eventType,
			Status:    model.WebhookStatusPending,
			Payload:   datatypes.JSON(payload),
		}
		// Duplicate deliveries keep the first row
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(event).Error; err != nil {
			return fmt.Errorf("failed to save webhook event: %w", err)
		}

		var stored model.WebhookEvent
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", eventID).
			First(&stored).Error; err != nil {
			return fmt.Errorf("failed to load webhook event: %w", err)
		}

		switch {
		case stored.Status == model.WebhookStatusCompleted:
			state = domainRepo.DeliveryCompleted
			return nil
		case stored.Status == model.WebhookStatusProcessing &&
			stored.ClaimedAt != nil && now.Sub(*stored.ClaimedAt) < webhookClaimTimeout:
			state = domainRepo.DeliveryInFlight
			return nil
		}

		return tx.Model(&stored).Updates(map[string]interface{}{
			"status":              model.WebhookStatusProcessing,
			"processing_attempts": gorm.Expr("processing_attempts + 1"),
			"claimed_at":          now,
		}).Error
	})
	if err != nil {
		r.logger.Error("Failed to begin webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(err))
		return domainRepo.DeliveryClaimed, err
	}

	return state, nil
}

func (r *webhookRepository) MarkCompleted(ctx context.Context, eventID string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusCompleted,
			"processed_at": now,
			"last_error":   nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark webhook event completed: %w", err)
	}
	return nil
}

func (r *webhookRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	message := cause.Error()
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": message,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark webhook event failed: %w", err)
	}
	return nil
}
