package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"github.com/wekeepgrowing/uxpilot-billing/internal/middleware/auth"
	pkgErrors "github.com/wekeepgrowing/uxpilot-billing/pkg/errors"
	"go.uber.org/zap"
)

// toAppError maps domain failures to coded application errors. Anything
// unrecognised becomes an internal error with a generic message.
func toAppError(err error, fallback string) *pkgErrors.AppError {
	var insufficient *domainErrors.InsufficientBalanceError
	var providerErr *provider.ProviderError

	switch {
	case errors.As(err, &insufficient):
		return pkgErrors.InsufficientCredits(insufficient.Error(), err)
	case errors.Is(err, domainErrors.ErrInsufficientCredits):
		return pkgErrors.InsufficientCredits("", err)
	case errors.Is(err, domainErrors.ErrUserNotFound):
		return pkgErrors.NotFound("User not found", err)
	case errors.Is(err, domainErrors.ErrSubscriptionNotFound):
		return pkgErrors.NotFound("Subscription not found", err)
	case errors.Is(err, domainErrors.ErrNoActiveSubscription):
		return pkgErrors.NotFound("No active subscription found", err)
	case errors.Is(err, domainErrors.ErrUnknownPlan):
		return pkgErrors.InvalidArgument("Unknown plan", err)
	case errors.Is(err, domainErrors.ErrUnknownCreditPack):
		return pkgErrors.InvalidArgument("Unknown credit pack", err)
	case errors.Is(err, domainErrors.ErrInvalidAmount):
		return pkgErrors.InvalidArgument("Invalid credit amount", err)
	case errors.Is(err, domainErrors.ErrSelfTransfer):
		return pkgErrors.InvalidArgument("Cannot transfer credits to yourself", err)
	case errors.Is(err, domainErrors.ErrTransferRateLimited):
		return pkgErrors.NewAppError(pkgErrors.ErrRateLimited, "Too many transfers, please try again later", err)
	case errors.Is(err, domainErrors.ErrInvalidSignature):
		return pkgErrors.NewAppError(pkgErrors.ErrUnauthenticated, "Invalid webhook signature", err)
	case errors.As(err, &providerErr):
		return pkgErrors.ProviderUnavailable(err)
	}
	return pkgErrors.NewAppError(pkgErrors.ErrInternal, fallback, err)
}

// respondError logs the failure and converts it into an echo HTTP error
func respondError(logger *zap.Logger, err error, msg string, fields ...zap.Field) error {
	appErr := toAppError(err, msg)
	pkgErrors.LogError(logger, appErr, msg, fields...)
	return pkgErrors.ToHTTPError(appErr)
}

// bindAndValidate decodes the JSON body and runs the struct validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// currentUserID returns the authenticated user id or writes a 401
func currentUserID(c echo.Context) (string, error) {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}
