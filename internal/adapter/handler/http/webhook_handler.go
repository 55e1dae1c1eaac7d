package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/crypto"
	"go.uber.org/zap"
)

// Standard Webhooks headers sent with every delivery.
const (
	headerWebhookID        = "webhook-id"
	headerWebhookTimestamp = "webhook-timestamp"
	headerWebhookSignature = "webhook-signature"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookUsecase interface {
	HandleEvent(ctx context.Context, deliveryID string, event *dto.WebhookEvent, raw []byte) error
}

type WebhookHandler struct {
	logger   *zap.Logger
	verifier crypto.SignatureVerifier
	webhooks WebhookUsecase
}

// NewWebhookHandler creates the provider webhook endpoint. A nil verifier
// accepts unsigned deliveries.
func NewWebhookHandler(logger *zap.Logger, verifier crypto.SignatureVerifier, webhooks WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{
		logger:   logger,
		verifier: verifier,
		webhooks: webhooks,
	}
}

// HandleWebhook acknowledges every well-formed, authentic delivery with
// {"success": true}, even when applying it failed. A delivery another
// attempt is still applying gets a 409 so the provider retries it later.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	headers := c.Request().Header
	deliveryID := headers.Get(headerWebhookID)

	if h.verifier != nil {
		if err := h.verifier.Verify(deliveryID, headers.Get(headerWebhookTimestamp), headers.Get(headerWebhookSignature), body); err != nil {
			h.logger.Warn("Webhook signature verification failed",
				zap.String("webhook_id", deliveryID),
				zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid webhook signature"})
		}
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Type == "" {
		h.logger.Warn("Malformed webhook payload",
			zap.String("webhook_id", deliveryID),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Malformed webhook payload"})
	}

	h.logger.Info("Webhook event received",
		zap.String("webhook_id", deliveryID),
		zap.String("type", event.Type),
		zap.String("reference", event.Data.ID))

	if err := h.webhooks.HandleEvent(c.Request().Context(), deliveryID, &event, body); err != nil {
		if errors.Is(err, domainErrors.ErrDeliveryInFlight) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Webhook delivery is already being processed"})
		}
		h.logger.Error("Unexpected webhook handling error",
			zap.String("webhook_id", deliveryID),
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
