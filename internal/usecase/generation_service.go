package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"go.uber.org/zap"
)

// chargeTimeout bounds the debit that follows a successful generation.
const chargeTimeout = 10 * time.Second

// GenerationService is the metered design generation flow: check, generate, then charge.
type GenerationService struct {
	entitlements *EntitlementService
	credits      *CreditService
	generator    provider.DesignGenerator
	logger       *zap.Logger
}

func NewGenerationService(
	entitlements *EntitlementService,
	credits *CreditService,
	generator provider.DesignGenerator,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		entitlements: entitlements,
		credits:      credits,
		generator:    generator,
		logger:       logger,
	}
}

// GenerateDesign returns the decision when the user is not entitled. A
// generator failure leaves the balance untouched. A failed charge after a
// successful generation is returned as an error and logged for follow-up.
// The charge survives cancellation of ctx once the design exists.
func (s *GenerationService) GenerateDesign(ctx context.Context, userID string, req dto.GenerateDesignRequest) (*dto.GenerateDesignResponse, *entity.Decision, error) {
	cost := model.DefaultCreditsRequired

	decision, err := s.entitlements.CanUserPerformAction(ctx, userID, model.ActionGenerateDesign, cost)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, decision, nil
	}

	design, err := s.generator.Generate(ctx, &provider.GenerateRequest{
		Context:    req.Context,
		UseCase:    req.UseCase,
		ScreenType: req.ScreenType,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate design: %w", err)
	}

	chargeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), chargeTimeout)
	defer cancel()

	designID := design.ID
	if err := s.credits.ConsumeCredits(chargeCtx, userID, cost, model.ActionGenerateDesign, &designID); err != nil {
		s.logger.Error("Design generated but credits were not recorded",
			zap.String("user_id", userID),
			zap.String("design_id", designID),
			zap.Int("credits", cost),
			zap.Error(err))
		return nil, nil, err
	}

	return &dto.GenerateDesignResponse{
		DesignID:         designID,
		HTML:             design.HTML,
		CreditsUsed:      cost,
		CreditsRemaining: *decision.CreditsRemaining - cost,
	}, nil, nil
}
