package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"go.uber.org/zap"
)

type CheckoutUsecase interface {
	CreateSubscriptionCheckout(ctx context.Context, userID string, req dto.SubscriptionCheckoutRequest) (*dto.CheckoutResponse, error)
	CreateCreditPackCheckout(ctx context.Context, userID string, req dto.CreditPackCheckoutRequest) (*dto.CheckoutResponse, error)
}

type CheckoutHandler struct {
	logger   *zap.Logger
	checkout CheckoutUsecase
}

func NewCheckoutHandler(logger *zap.Logger, checkout CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{
		logger:   logger,
		checkout: checkout,
	}
}

// CreateSubscriptionCheckout handles POST /api/v1/checkout/subscription
func (h *CheckoutHandler) CreateSubscriptionCheckout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.SubscriptionCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.checkout.CreateSubscriptionCheckout(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(h.logger, err, "Failed to create checkout session",
			zap.String("user_id", userID),
			zap.String("plan", req.Plan),
			zap.String("billing_cycle", req.BillingCycle))
	}

	return c.JSON(http.StatusOK, resp)
}

// CreateCreditPackCheckout handles POST /api/v1/checkout/credit-pack
func (h *CheckoutHandler) CreateCreditPackCheckout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreditPackCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.checkout.CreateCreditPackCheckout(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(h.logger, err, "Failed to create checkout session",
			zap.String("user_id", userID),
			zap.Int("credits", req.Credits))
	}

	return c.JSON(http.StatusOK, resp)
}
