package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"go.uber.org/zap"
)

type EntitlementUsecase interface {
	CanUserPerformAction(ctx context.Context, userID string, action model.Action, creditsRequired int) (*entity.Decision, error)
}

type EntitlementHandler struct {
	logger       *zap.Logger
	entitlements EntitlementUsecase
}

func NewEntitlementHandler(logger *zap.Logger, entitlements EntitlementUsecase) *EntitlementHandler {
	return &EntitlementHandler{logger: logger, entitlements: entitlements}
}

// Check handles POST /api/v1/entitlements/check. A denial is a 200 with
// allowed=false.
func (h *EntitlementHandler) Check(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CheckEntitlementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	credits := model.DefaultCreditsRequired
	if req.CreditsRequired != nil {
		credits = *req.CreditsRequired
	}

	decision, err := h.entitlements.CanUserPerformAction(c.Request().Context(), userID, model.Action(req.Action), credits)
	if err != nil {
		return respondError(h.logger, err, "Failed to evaluate entitlement",
			zap.String("user_id", userID),
			zap.String("action", req.Action))
	}

	return c.JSON(http.StatusOK, decision)
}
