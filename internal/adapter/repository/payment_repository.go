package repository

import (
	"context"
	"fmt"

	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// RecordWithStatus stores a payment and moves its subscription to status
func (r *paymentRepository) RecordWithStatus(ctx context.Context, payment *model.Payment, status model.SubscriptionStatus) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		result := tx.Model(&model.Subscription{}).
			Where("id = ?", payment.SubscriptionID).
			Update("status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update subscription status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.ErrSubscriptionNotFound
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to record payment",
			zap.String("subscription_id", payment.SubscriptionID),
			zap.String("external_payment_id", payment.ExternalPaymentID),
			zap.Error(err))
		return err
	}

	r.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("subscription_id", payment.SubscriptionID),
		zap.String("status", string(payment.Status)),
		zap.String("amount", payment.Amount.String()))
	return nil
}

func (r *paymentRepository) ListBySubscription(ctx context.Context, subscriptionID string, limit int) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
