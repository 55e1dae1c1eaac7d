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

type SubscriptionUsecase interface {
	GetUserSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	CaptureSubscription(ctx context.Context, userID string, req dto.CaptureSubscriptionRequest) (*model.Subscription, error)
	CancelUserSubscription(ctx context.Context, userID string) (*model.Subscription, error)
	SyncUserSubscription(ctx context.Context, userID string) (*entity.SyncResult, error)
	GetSubscriptionStatus(ctx context.Context, userID string) (*entity.SubscriptionStatus, error)
}

type SubscriptionHandler struct {
	logger        *zap.Logger
	subscriptions SubscriptionUsecase
}

func NewSubscriptionHandler(logger *zap.Logger, subscriptions SubscriptionUsecase) *SubscriptionHandler {
	return &SubscriptionHandler{
		logger:        logger,
		subscriptions: subscriptions,
	}
}

// GetCurrentSubscription returns 204 when the user has no current subscription
func (h *SubscriptionHandler) GetCurrentSubscription(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.GetUserSubscription(c.Request().Context(), userID)
	if err != nil {
		return respondError(h.logger, err, "Failed to retrieve subscription information", zap.String("user_id", userID))
	}
	if sub == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusOK, sub)
}

// CaptureSubscription records the subscription returned by a completed checkout
func (h *SubscriptionHandler) CaptureSubscription(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CaptureSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptions.CaptureSubscription(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(h.logger, err, "Failed to create subscription",
			zap.String("user_id", userID),
			zap.String("subscription_id", req.SubscriptionID),
			zap.String("plan_id", req.PlanID))
	}

	h.logger.Info("Subscription captured",
		zap.String("user_id", userID),
		zap.String("subscription_id", sub.ID),
		zap.String("plan", string(sub.Plan)))

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"subscription": sub,
	})
}

func (h *SubscriptionHandler) CancelSubscription(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.CancelUserSubscription(c.Request().Context(), userID)
	if err != nil {
		return respondError(h.logger, err, "Failed to cancel subscription", zap.String("user_id", userID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"subscription": sub,
	})
}

func (h *SubscriptionHandler) SyncSubscription(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	result, err := h.subscriptions.SyncUserSubscription(c.Request().Context(), userID)
	if err != nil {
		return respondError(h.logger, err, "Failed to sync subscription", zap.String("user_id", userID))
	}

	return c.JSON(http.StatusOK, result)
}

// GetSubscriptionStatus handles GET /api/v1/user/subscription-status
func (h *SubscriptionHandler) GetSubscriptionStatus(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	status, err := h.subscriptions.GetSubscriptionStatus(c.Request().Context(), userID)
	if err != nil {
		return respondError(h.logger, err, "Failed to retrieve subscription status", zap.String("user_id", userID))
	}

	return c.JSON(http.StatusOK, status)
}
