package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// currentPaymentLimit is how many payments accompany the current subscription.
const currentPaymentLimit = 5

// CreateSubscriptionParams describes a new ACTIVE subscription.
// Credits only applies when an existing subscription is re-activated;
// zero means the plan's monthly allotment.
type CreateSubscriptionParams struct {
	UserID                 string
	ExternalSubscriptionID string
	ExternalPlanID         string
	Plan                   model.Plan
	BillingCycle           model.BillingCycle
	Amount                 decimal.Decimal
	Currency               string
	Credits                int
	NextBillingDate        *time.Time
}

// SubscriptionService manages subscription records and the plan allotment
// they grant.
type SubscriptionService struct {
	subscriptionRepo domainRepo.SubscriptionRepository
	userRepo         domainRepo.UserRepository
	provider         provider.PaymentProvider
	catalog          *Catalog
	logger           *zap.Logger
	now              func() time.Time
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(
	subscriptionRepo domainRepo.SubscriptionRepository,
	userRepo domainRepo.UserRepository,
	paymentProvider provider.PaymentProvider,
	catalog *Catalog,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		provider:         paymentProvider,
		catalog:          catalog,
		logger:           logger,
		now:              time.Now,
	}
}

// CreateSubscription inserts an ACTIVE subscription and resets the user to
// the plan's allotment, whatever the billing cycle. Callers check for an
// existing external id first.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, params CreateSubscriptionParams) (*model.Subscription, error) {
	credits := params.Plan.Config().Credits
	cycle := params.BillingCycle
	if cycle == "" {
		cycle = model.BillingCycleMonthly
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	sub := &model.Subscription{
		UserID:                 params.UserID,
		ExternalSubscriptionID: params.ExternalSubscriptionID,
		ExternalPlanID:         params.ExternalPlanID,
		Plan:                   params.Plan,
		Status:                 model.SubscriptionStatusActive,
		BillingCycle:           cycle,
		Amount:                 params.Amount,
		Currency:               currency,
		CreditsIncluded:        credits,
		NextBillingDate:        params.NextBillingDate,
	}

	if err := s.subscriptionRepo.CreateWithPlan(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, nil
}

// CancelSubscription cancels locally and downgrades the owner to FREE.
// An already cancelled subscription is returned unchanged.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.CancelAndDowngrade(ctx, subscriptionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return sub, nil
}

// GetUserSubscription returns the newest ACTIVE or SUSPENDED subscription
// with its latest payments, or nil.
func (s *SubscriptionService) GetUserSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return s.subscriptionRepo.FindCurrentByUser(ctx, userID, currentPaymentLimit)
}

// ActivateSubscription creates the subscription or, when the external id
// is already known, re-activates it. Repeated calls leave one row.
func (s *SubscriptionService) ActivateSubscription(ctx context.Context, params CreateSubscriptionParams) (*model.Subscription, error) {
	existing, err := s.subscriptionRepo.FindByExternalID(ctx, params.ExternalSubscriptionID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.CreateSubscription(ctx, params)
	}

	existing.Plan = params.Plan
	if params.BillingCycle != "" {
		existing.BillingCycle = params.BillingCycle
	}
	if params.Credits > 0 {
		existing.CreditsIncluded = params.Credits
	} else {
		existing.CreditsIncluded = params.Plan.Config().Credits
	}
	if params.ExternalPlanID != "" {
		existing.ExternalPlanID = params.ExternalPlanID
	}
	if params.NextBillingDate != nil {
		existing.NextBillingDate = params.NextBillingDate
	}

	if err := s.subscriptionRepo.Reactivate(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to reactivate subscription: %w", err)
	}

	s.logger.Info("Subscription reactivated",
		zap.String("subscription_id", existing.ID),
		zap.String("external_subscription_id", existing.ExternalSubscriptionID),
		zap.String("plan", string(existing.Plan)))
	return existing, nil
}

// CaptureSubscription records a subscription right after checkout returns.
// planName wins over the catalog lookup of planId.
func (s *SubscriptionService) CaptureSubscription(ctx context.Context, userID string, req dto.CaptureSubscriptionRequest) (*model.Subscription, error) {
	existing, err := s.subscriptionRepo.FindByExternalID(ctx, req.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	params := CreateSubscriptionParams{
		UserID:                 userID,
		ExternalSubscriptionID: req.SubscriptionID,
		ExternalPlanID:         req.PlanID,
	}

	if plan, ok := model.ParsePlan(req.PlanName); ok && plan.IsPaid() {
		params.Plan = plan
		params.BillingCycle = model.ParseBillingCycle(req.BillingCycle)
	} else if product, ok := s.catalog.LookupPlan(req.PlanID); ok {
		params.Plan = product.Plan
		params.BillingCycle = product.BillingCycle
	} else {
		s.logger.Warn("Unknown plan on subscription capture",
			zap.String("user_id", userID),
			zap.String("plan_id", req.PlanID),
			zap.String("plan_name", req.PlanName))
		return nil, domainErrors.ErrUnknownPlan
	}

	return s.CreateSubscription(ctx, params)
}

// CancelUserSubscription cancels the user's current subscription with the
// provider and locally. A provider failure does not block the local change.
func (s *SubscriptionService) CancelUserSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	current, err := s.subscriptionRepo.FindCurrentByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Status != model.SubscriptionStatusActive {
		return nil, domainErrors.ErrNoActiveSubscription
	}

	if err := s.provider.CancelSubscription(ctx, current.ExternalSubscriptionID); err != nil {
		s.logger.Warn("Remote subscription cancel failed, cancelling locally",
			zap.String("subscription_id", current.ID),
			zap.String("external_subscription_id", current.ExternalSubscriptionID),
			zap.Error(err))
	}

	return s.CancelSubscription(ctx, current.ID)
}

// SyncUserSubscription pulls the provider status of the user's current subscription
func (s *SubscriptionService) SyncUserSubscription(ctx context.Context, userID string) (*entity.SyncResult, error) {
	current, err := s.subscriptionRepo.FindCurrentByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domainErrors.ErrNoActiveSubscription
	}
	return s.SyncSubscription(ctx, current, false)
}

// SyncSubscription applies the provider's status to sub. A change to
// CANCELLED also downgrades the user. With dryRun the result is computed
// but nothing is written.
func (s *SubscriptionService) SyncSubscription(ctx context.Context, sub *model.Subscription, dryRun bool) (*entity.SyncResult, error) {
	remote, err := s.provider.GetSubscription(ctx, sub.ExternalSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote subscription: %w", err)
	}

	result := &entity.SyncResult{
		SubscriptionID: sub.ID,
		Previous:       sub.Status,
		Current:        model.StatusFromProvider(remote.Status),
	}
	if result.Current == result.Previous {
		return result, nil
	}
	result.Changed = true
	if dryRun {
		return result, nil
	}

	if result.Current == model.SubscriptionStatusCancelled {
		if _, err := s.subscriptionRepo.CancelAndDowngrade(ctx, sub.ID, cancelTime(remote.CancelledAt, s.now())); err != nil {
			return nil, err
		}
	} else if err := s.subscriptionRepo.UpdateStatus(ctx, sub.ID, result.Current); err != nil {
		return nil, err
	}

	s.logger.Info("Subscription status synced",
		zap.String("subscription_id", sub.ID),
		zap.String("previous_status", string(result.Previous)),
		zap.String("current_status", string(result.Current)))
	return result, nil
}

// GetSubscriptionStatus summarizes the user's plan, credits and subscription
func (s *SubscriptionService) GetSubscriptionStatus(ctx context.Context, userID string) (*entity.SubscriptionStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}

	current, err := s.subscriptionRepo.FindCurrentByUser(ctx, userID, currentPaymentLimit)
	if err != nil {
		return nil, err
	}

	return &entity.SubscriptionStatus{
		Plan:             user.CurrentPlan,
		CreditsTotal:     user.CreditsTotal,
		CreditsUsed:      user.CreditsUsed,
		CreditsRemaining: user.Remaining(),
		HasSubscription:  current != nil,
		Subscription:     current,
	}, nil
}

func cancelTime(at *time.Time, fallback time.Time) time.Time {
	if at != nil {
		return *at
	}
	return fallback
}
