package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"go.uber.org/zap"
)

type GenerationUsecase interface {
	GenerateDesign(ctx context.Context, userID string, req dto.GenerateDesignRequest) (*dto.GenerateDesignResponse, *entity.Decision, error)
}

type DesignHandler struct {
	logger     *zap.Logger
	generation GenerationUsecase
}

func NewDesignHandler(logger *zap.Logger, generation GenerationUsecase) *DesignHandler {
	return &DesignHandler{logger: logger, generation: generation}
}

// Generate handles POST /api/v1/designs/generate. A denied entitlement
// returns 403 with the reason and, when known, the remaining balance.
func (h *DesignHandler) Generate(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.GenerateDesignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, decision, err := h.generation.GenerateDesign(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(h.logger, err, "Failed to generate design", zap.String("user_id", userID))
	}

	if decision != nil && !decision.Allowed {
		body := echo.Map{"error": decision.Reason}
		if decision.CreditsRemaining != nil {
			body["creditsRemaining"] = *decision.CreditsRemaining
		}
		return c.JSON(http.StatusForbidden, body)
	}

	return c.JSON(http.StatusOK, resp)
}
