package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/limiter"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// RateLimitWindow is the fixed window for per-action limits.
const RateLimitWindow = time.Hour

// EntitlementService decides whether a user may perform a metered action.
type EntitlementService struct {
	userRepo    domainRepo.UserRepository
	featureRepo domainRepo.FeatureUsageRepository
	limiter     limiter.Limiter
	window      time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewEntitlementService creates a new entitlement service. A zero window
// falls back to one hour.
func NewEntitlementService(
	userRepo domainRepo.UserRepository,
	featureRepo domainRepo.FeatureUsageRepository,
	rateLimiter limiter.Limiter,
	window time.Duration,
	logger *zap.Logger,
) *EntitlementService {
	if window <= 0 {
		window = RateLimitWindow
	}
	return &EntitlementService{
		userRepo:    userRepo,
		featureRepo: featureRepo,
		limiter:     rateLimiter,
		window:      window,
		logger:      logger,
		now:         time.Now,
	}
}

// CanUserPerformAction runs the entitlement checks in order and returns the
// first denial. The error is non-nil only for storage failures.
func (s *EntitlementService) CanUserPerformAction(ctx context.Context, userID string, action model.Action, creditsRequired int) (*entity.Decision, error) {
	if userID == "" || action == "" || creditsRequired < 0 {
		return entity.Deny(entity.ReasonInvalidParameters), nil
	}

	// The attempt is counted even when a later check denies it.
	allowed, err := s.limiter.Allow(ctx, limiter.Key(userID, string(action)), action.RateLimit(), s.window)
	if err != nil {
		s.logger.Warn("Rate limiter unavailable, allowing request",
			zap.String("user_id", userID),
			zap.String("action", string(action)),
			zap.Error(err))
		allowed = true
	}
	if !allowed {
		s.logger.Info("Rate limit exceeded",
			zap.String("user_id", userID),
			zap.String("action", string(action)))
		return entity.Deny(entity.ReasonRateLimited), nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return entity.Deny(entity.ReasonUserNotFound), nil
	}

	remaining := user.Remaining()
	if remaining < creditsRequired {
		return entity.DenyInsufficient(creditsRequired, remaining), nil
	}

	if user.CreditsUsed < 0 || user.CreditsTotal < 0 {
		s.logger.Error("Invalid credit state detected",
			zap.String("user_id", userID),
			zap.Int("credits_total", user.CreditsTotal),
			zap.Int("credits_used", user.CreditsUsed))
		return entity.Deny(entity.ReasonInvalidAccountState), nil
	}

	usage, err := s.featureRepo.FindByUserAndMonth(ctx, userID, model.MonthKey(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load feature usage: %w", err)
	}

	if reason := checkPlanQuota(user.CurrentPlan, action, usage); reason != "" {
		return entity.Deny(reason), nil
	}

	return entity.Allow(remaining), nil
}

// checkPlanQuota returns a denial reason, or "" when the plan permits the action.
func checkPlanQuota(plan model.Plan, action model.Action, usage *model.FeatureUsage) string {
	limits := plan.Config()

	switch action {
	case model.ActionCreateDesignFile:
		if limits.DesignFiles > 0 && usage.Count(model.CounterDesignFiles) >= limits.DesignFiles {
			return entity.ReasonDesignFileLimit
		}
	case model.ActionCreateScreenFlow:
		if limits.ScreenFlows > 0 && usage.Count(model.CounterScreenFlows) >= limits.ScreenFlows {
			return entity.ReasonScreenFlowLimit
		}
	case model.ActionExportFigma, model.ActionExportCode:
		if !plan.IsPaid() {
			return entity.ReasonExportRequiresPaid
		}
	}
	return ""
}
