package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *subscriptionRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Subscription, error) {
	return r.findOne(ctx, "external_subscription_id = ?", externalID)
}

func (r *subscriptionRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Where(query, arg).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get subscription",
			zap.String("lookup", query),
			zap.Any("value", arg),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// FindCurrentByUser returns the newest ACTIVE or SUSPENDED subscription with its latest payments
func (r *subscriptionRepository) FindCurrentByUser(ctx context.Context, userID string, paymentLimit int) (*model.Subscription, error) {
	var sub model.Subscription
	query := r.db.WithContext(ctx)
	if paymentLimit > 0 {
		query = query.Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(paymentLimit)
		})
	}
	err := query.
		Where("user_id = ? AND status IN ?", userID, model.CurrentSubscriptionStatuses).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get current subscription",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get current subscription: %w", err)
	}
	return &sub, nil
}

// CreateWithPlan inserts the subscription and hard-resets the user's allotment
func (r *subscriptionRepository) CreateWithPlan(ctx context.Context, sub *model.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return applyPlan(tx, sub.UserID, sub.Plan, sub.CreditsIncluded)
	})
	if err != nil {
		r.logger.Error("Failed to create subscription",
			zap.String("user_id", sub.UserID),
			zap.String("external_subscription_id", sub.ExternalSubscriptionID),
			zap.Error(err))
		return err
	}

	r.logger.Info("Subscription created",
		zap.String("subscription_id", sub.ID),
		zap.String("user_id", sub.UserID),
		zap.String("plan", string(sub.Plan)),
		zap.Int("credits", sub.CreditsIncluded))
	return nil
}

// Reactivate sets an existing subscription ACTIVE and re-applies its plan to the user
func (r *subscriptionRepository) Reactivate(ctx context.Context, sub *model.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Subscription{}).
			Where("id = ?", sub.ID).
			Updates(map[string]interface{}{
				"status":            model.SubscriptionStatusActive,
				"plan":              sub.Plan,
				"billing_cycle":     sub.BillingCycle,
				"credits_included":  sub.CreditsIncluded,
				"external_plan_id":  sub.ExternalPlanID,
				"next_billing_date": sub.NextBillingDate,
				"cancelled_at":      nil,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to reactivate subscription: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.ErrSubscriptionNotFound
		}
		return applyPlan(tx, sub.UserID, sub.Plan, sub.CreditsIncluded)
	})
	if err != nil {
		r.logger.Error("Failed to reactivate subscription",
			zap.String("subscription_id", sub.ID),
			zap.Error(err))
		return err
	}

	sub.Status = model.SubscriptionStatusActive
	sub.CancelledAt = nil
	return nil
}

// CancelAndDowngrade cancels the subscription and moves the user to FREE.
// credits_used is left untouched, so remaining may go negative.
func (r *subscriptionRepository) CancelAndDowngrade(ctx context.Context, id string, cancelledAt time.Time) (*model.Subscription, error) {
	var sub model.Subscription

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.ErrSubscriptionNotFound
			}
			return fmt.Errorf("failed to lock subscription: %w", err)
		}

		if sub.Status == model.SubscriptionStatusCancelled {
			return nil
		}

		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"status":       model.SubscriptionStatusCancelled,
			"cancelled_at": cancelledAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}
		sub.Status = model.SubscriptionStatusCancelled
		sub.CancelledAt = &cancelledAt

		result := tx.Model(&model.User{}).
			Where("id = ?", sub.UserID).
			Updates(map[string]interface{}{
				"current_plan":  model.PlanFree,
				"credits_total": model.PlanFree.Config().Credits,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to downgrade user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to cancel subscription",
			zap.String("subscription_id", id),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Subscription cancelled",
		zap.String("subscription_id", sub.ID),
		zap.String("user_id", sub.UserID))
	return &sub, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, id string, status model.SubscriptionStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) UpdateStatusByExternalID(ctx context.Context, externalID string, status model.SubscriptionStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("external_subscription_id = ?", externalID).
		Update("status", status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update subscription status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *subscriptionRepository) ListByStatuses(ctx context.Context, statuses []model.SubscriptionStatus, afterID string, limit int) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("status IN ? AND id > ?", statuses, afterID).
		Order("id").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// applyPlan sets plan and ceiling and resets usage for a new cycle
func applyPlan(tx *gorm.DB, userID string, plan model.Plan, credits int) error {
	result := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"current_plan":  plan,
			"credits_total": credits,
			"credits_used":  0,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to apply plan to user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}
