package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/ratelimit"
	"github.com/wekeepgrowing/uxpilot-billing/internal/usecase"
)

func allowAll() *MockLimiter {
	l := new(MockLimiter)
	l.On("Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	return l
}

func TestEntitlementService_CanUserPerformAction(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		user           *model.User
		usage          *model.FeatureUsage
		action         model.Action
		credits        int
		expectAllowed  bool
		expectedReason string
	}{
		{
			name:          "free user with enough credits",
			user:          &model.User{ID: "u1", CurrentPlan: model.PlanFree, CreditsTotal: 90, CreditsUsed: 0},
			action:        model.ActionGenerateDesign,
			credits:       6,
			expectAllowed: true,
		},
		{
			name:           "insufficient credits",
			user:           &model.User{ID: "u1", CurrentPlan: model.PlanFree, CreditsTotal: 90, CreditsUsed: 88},
			action:         model.ActionGenerateDesign,
			credits:        6,
			expectedReason: entity.ReasonInsufficientCredits,
		},
		{
			name:           "downgraded below usage is denied as insufficient",
			user:           &model.User{ID: "u1", CurrentPlan: model.PlanFree, CreditsTotal: 90, CreditsUsed: 300},
			action:         model.ActionGenerateDesign,
			credits:        1,
			expectedReason: entity.ReasonInsufficientCredits,
		},
		{
			name:           "negative usage is an invalid account state",
			user:           &model.User{ID: "u1", CurrentPlan: model.PlanFree, CreditsTotal: 90, CreditsUsed: -5},
			action:         model.ActionGenerateDesign,
			credits:        6,
			expectedReason: entity.ReasonInvalidAccountState,
		},
		{
			name:           "standard design file quota reached",
			user:           &model.User{ID: "u1", CurrentPlan: model.PlanStandard, CreditsTotal: 420, CreditsUsed: 0},
			usage:          &model.FeatureUsage{DesignFiles: 5},
			action:         model.ActionCreateDesignFile,
			credits:        6,
			expectedReason: entity.ReasonDesignFileLimit,
		},
		{
			name:          "standard design file under quota",
			user:          &model.User{ID: "u1", CurrentPlan: model.PlanStandard, CreditsTotal: 420, CreditsUsed: 0},
			usage:         &model.FeatureUsage{DesignFiles: 4},
			action:        model.ActionCreateDesignFile,
			credits:       6,
			expectAllowed: true,
		},
		{
			name:           "standard screen flow quota reached",
			user:           &model.User{ID: "u1", CurrentPlan: model.PlanStandard, CreditsTotal: 420, CreditsUsed: 0},
			usage:          &model.FeatureUsage{ScreenFlows: 5},
			action:         model.ActionCreateScreenFlow,
			credits:        6,
			expectedReason: entity.ReasonScreenFlowLimit,
		},
		{
			name:          "pro has no design file cap",
			user:          &model.User{ID: "u1", CurrentPlan: model.PlanPro, CreditsTotal: 1200, CreditsUsed: 0},
			usage:         &model.FeatureUsage{DesignFiles: 500},
			action:        model.ActionCreateDesignFile,
			credits:       6,
			expectAllowed: true,
		},
		{
			name:           "free user cannot export",
			user:           &model.User{ID: "u1", CurrentPlan: model.PlanFree, CreditsTotal: 90, CreditsUsed: 0},
			action:         model.ActionExportFigma,
			credits:        6,
			expectedReason: entity.ReasonExportRequiresPaid,
		},
		{
			name:          "paid user can export code",
			user:          &model.User{ID: "u1", CurrentPlan: model.PlanStandard, CreditsTotal: 420, CreditsUsed: 0},
			action:        model.ActionExportCode,
			credits:       6,
			expectAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			featureRepo := new(MockFeatureUsageRepository)

			userRepo.On("FindByID", ctx, tt.user.ID).Return(tt.user, nil)
			featureRepo.On("FindByUserAndMonth", ctx, tt.user.ID, mock.AnythingOfType("string")).Return(tt.usage, nil).Maybe()

			service := usecase.NewEntitlementService(userRepo, featureRepo, allowAll(), time.Hour, zap.NewNop())

			decision, err := service.CanUserPerformAction(ctx, tt.user.ID, tt.action, tt.credits)
			require.NoError(t, err)
			assert.Equal(t, tt.expectAllowed, decision.Allowed)
			assert.Equal(t, tt.expectedReason, decision.Reason)

			userRepo.AssertExpectations(t)
		})
	}
}

func TestEntitlementService_InsufficientReportsAmounts(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", CreditsTotal: 90, CreditsUsed: 300}, nil)

	service := usecase.NewEntitlementService(userRepo, new(MockFeatureUsageRepository), allowAll(), time.Hour, zap.NewNop())

	decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionGenerateDesign, 6)
	require.NoError(t, err)
	require.NotNil(t, decision.CreditsRequired)
	require.NotNil(t, decision.CreditsRemaining)
	assert.Equal(t, 6, *decision.CreditsRequired)
	assert.Equal(t, -210, *decision.CreditsRemaining)
}

func TestEntitlementService_InvalidParameters(t *testing.T) {
	service := usecase.NewEntitlementService(new(MockUserRepository), new(MockFeatureUsageRepository), new(MockLimiter), time.Hour, zap.NewNop())
	ctx := context.Background()

	for _, tc := range []struct {
		userID  string
		action  model.Action
		credits int
	}{
		{"", model.ActionGenerateDesign, 6},
		{"u1", "", 6},
		{"u1", model.ActionGenerateDesign, -1},
	} {
		decision, err := service.CanUserPerformAction(ctx, tc.userID, tc.action, tc.credits)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, entity.ReasonInvalidParameters, decision.Reason)
	}
}

func TestEntitlementService_RateLimit(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	featureRepo := new(MockFeatureUsageRepository)
	user := &model.User{ID: "u1", CurrentPlan: model.PlanPro, CreditsTotal: 100000, CreditsUsed: 0}
	userRepo.On("FindByID", ctx, "u1").Return(user, nil)
	featureRepo.On("FindByUserAndMonth", ctx, "u1", mock.Anything).Return(nil, nil)

	limiter := ratelimit.NewMemoryLimiter(0)
	defer limiter.Close()

	service := usecase.NewEntitlementService(userRepo, featureRepo, limiter, time.Hour, zap.NewNop())

	for i := 0; i < 30; i++ {
		decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionGenerateDesign, 6)
		require.NoError(t, err)
		require.True(t, decision.Allowed, "attempt %d", i+1)
	}

	decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionGenerateDesign, 6)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, entity.ReasonRateLimited, decision.Reason)

	// other actions have their own window
	decision, err = service.CanUserPerformAction(ctx, "u1", model.ActionExportCode, 6)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEntitlementService_RateLimitChargedOnDenial(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, "u1").Return(nil, nil)

	limiter := ratelimit.NewMemoryLimiter(0)
	defer limiter.Close()

	service := usecase.NewEntitlementService(userRepo, new(MockFeatureUsageRepository), limiter, time.Hour, zap.NewNop())

	for i := 0; i < 10; i++ {
		decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionExportFigma, 6)
		require.NoError(t, err)
		assert.Equal(t, entity.ReasonUserNotFound, decision.Reason)
	}

	decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionExportFigma, 6)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonRateLimited, decision.Reason)
}

func TestEntitlementService_LimiterFailureFailsOpen(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)

	limiter := new(MockLimiter)
	limiter.On("Allow", ctx, "u1:generate_design", 30, time.Hour).Return(false, errors.New("redis down"))

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, "u1").Return(&model.User{ID: "u1", CurrentPlan: model.PlanFree, CreditsTotal: 90}, nil)
	featureRepo := new(MockFeatureUsageRepository)
	featureRepo.On("FindByUserAndMonth", ctx, "u1", mock.Anything).Return(nil, nil)

	service := usecase.NewEntitlementService(userRepo, featureRepo, limiter, time.Hour, zap.New(core))

	decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionGenerateDesign, 6)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, logs.FilterMessage("Rate limiter unavailable, allowing request").Len())
	limiter.AssertExpectations(t)
}

func TestEntitlementService_StorageError(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", ctx, "u1").Return(nil, errors.New("connection refused"))

	service := usecase.NewEntitlementService(userRepo, new(MockFeatureUsageRepository), allowAll(), time.Hour, zap.NewNop())

	decision, err := service.CanUserPerformAction(ctx, "u1", model.ActionGenerateDesign, 6)
	assert.Error(t, err)
	assert.Nil(t, decision)
}
