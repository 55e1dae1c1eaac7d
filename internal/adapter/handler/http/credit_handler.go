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

// CreditUsecase is the credit ledger surface used by the handler
type CreditUsecase interface {
	ConsumeCredits(ctx context.Context, userID string, credits int, action model.Action, resourceID *string) error
	DebitCredits(ctx context.Context, userID string, credits int, action model.Action, resourceID *string) (*model.User, error)
	PurchaseCredits(ctx context.Context, userID string, credits int) (*model.User, error)
	TransferCredits(ctx context.Context, senderID string, req dto.TransferCreditsRequest) (*entity.TransferResult, error)
	GetBalance(ctx context.Context, userID string) (*entity.Balance, error)
	ListUsage(ctx context.Context, userID string, page entity.PaginationParams) (*dto.UsageListResponse, error)
}

// CreditHandler handles credit-related HTTP requests
type CreditHandler struct {
	logger  *zap.Logger
	credits CreditUsecase
}

// NewCreditHandler creates a new credit handler instance
func NewCreditHandler(logger *zap.Logger, credits CreditUsecase) *CreditHandler {
	return &CreditHandler{
		logger:  logger,
		credits: credits,
	}
}

// GetBalance handles GET /api/v1/credits/balance
func (h *CreditHandler) GetBalance(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	balance, err := h.credits.GetBalance(c.Request().Context(), userID)
	if err != nil {
		return respondError(h.logger, err, "Failed to retrieve credit balance", zap.String("user_id", userID))
	}

	return c.JSON(http.StatusOK, balance)
}

// ListUsage handles GET /api/v1/credits/usage?page=&limit=
func (h *CreditHandler) ListUsage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var page entity.PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid pagination parameters")
	}

	usage, err := h.credits.ListUsage(c.Request().Context(), userID, page)
	if err != nil {
		return respondError(h.logger, err, "Failed to retrieve credit usage", zap.String("user_id", userID))
	}

	return c.JSON(http.StatusOK, usage)
}

// Purchase handles POST /api/v1/credits/purchase
func (h *CreditHandler) Purchase(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.PurchaseCreditsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.credits.PurchaseCredits(c.Request().Context(), userID, req.Credits)
	if err != nil {
		return respondError(h.logger, err, "Failed to purchase credits",
			zap.String("user_id", userID),
			zap.Int("credits", req.Credits))
	}

	h.logger.Info("Credits purchased",
		zap.String("user_id", userID),
		zap.Int("credits", req.Credits))

	return c.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"creditsAdded":     req.Credits,
		"creditsTotal":     user.CreditsTotal,
		"creditsRemaining": user.Remaining(),
	})
}

// Transfer handles POST /api/v1/credits/transfer
func (h *CreditHandler) Transfer(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.TransferCreditsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.credits.TransferCredits(c.Request().Context(), userID, req)
	if err != nil {
		return respondError(h.logger, err, "Failed to transfer credits",
			zap.String("sender_id", userID),
			zap.Int("credits", req.Credits))
	}

	return c.JSON(http.StatusOK, result)
}

// Consume handles POST /api/v1/credits/consume. Strict requests use the
// conditional debit and fail with 402 when the balance is short.
func (h *CreditHandler) Consume(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.ConsumeCreditsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	action := model.Action(req.Action)

	if !req.Strict {
		if err := h.credits.ConsumeCredits(ctx, userID, req.Credits, action, req.ResourceID); err != nil {
			return respondError(h.logger, err, "Failed to consume credits",
				zap.String("user_id", userID),
				zap.String("action", req.Action))
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}

	user, err := h.credits.DebitCredits(ctx, userID, req.Credits, action, req.ResourceID)
	if err != nil {
		return respondError(h.logger, err, "Failed to debit credits",
			zap.String("user_id", userID),
			zap.String("action", req.Action))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"creditsRemaining": user.Remaining(),
	})
}
