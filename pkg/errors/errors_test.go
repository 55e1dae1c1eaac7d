package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	apperrors "github.com/wekeepgrowing/uxpilot-billing/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrap(t *testing.T) {
	t.Run("keeps code of wrapped AppError", func(t *testing.T) {
		base := apperrors.NewAppError(apperrors.ErrNotFound, "user not found", nil)
		wrapped := apperrors.Wrap(base, "load balance")

		assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(wrapped))
		assert.True(t, apperrors.Is(wrapped, base))
	})

	t.Run("plain errors become internal", func(t *testing.T) {
		wrapped := apperrors.Wrap(fmt.Errorf("boom"), "load balance")
		assert.Equal(t, apperrors.ErrInternal, apperrors.CodeOf(wrapped))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, apperrors.Wrap(nil, "noop"))
	})
}

func TestCodeMappings(t *testing.T) {
	tests := []struct {
		code       string
		httpStatus int
		grpcCode   codes.Code
	}{
		{apperrors.ErrInsufficientCredits, http.StatusPaymentRequired, codes.FailedPrecondition},
		{apperrors.ErrRateLimited, http.StatusTooManyRequests, codes.ResourceExhausted},
		{apperrors.ErrProviderUnavailable, http.StatusBadGateway, codes.Unavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.httpStatus, apperrors.HTTPStatus(tt.code))
			assert.Equal(t, tt.grpcCode, apperrors.GRPCCode(tt.code))
		})
	}
}

func TestAppError_Message(t *testing.T) {
	assert.Equal(t, "Insufficient credits", apperrors.InsufficientCredits("", nil).Message())
	assert.Equal(t, "Need 6 credits", apperrors.InsufficientCredits("Need 6 credits", nil).Message())

	err := apperrors.ProviderUnavailable(fmt.Errorf("dial tcp: timeout"))
	assert.Equal(t, "Payment provider request failed: dial tcp: timeout", err.Error())
}

func TestToHTTPError(t *testing.T) {
	t.Run("client errors expose message", func(t *testing.T) {
		err := apperrors.InvalidArgument("credits must be positive", nil)
		httpErr := apperrors.ToHTTPError(err)

		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Equal(t, "credits must be positive", httpErr.Message)
	})

	t.Run("server errors hide details", func(t *testing.T) {
		err := apperrors.NewAppError(apperrors.ErrInternal, "insert credit usage", fmt.Errorf("pq: deadlock detected"))
		httpErr := apperrors.ToHTTPError(err)

		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
		assert.Equal(t, "Internal server error", httpErr.Message)
		assert.Equal(t, err, httpErr.Internal)
	})

	t.Run("provider failures map to bad gateway", func(t *testing.T) {
		httpErr := apperrors.ToHTTPError(apperrors.ProviderUnavailable(fmt.Errorf("HTTP 503")))

		assert.Equal(t, http.StatusBadGateway, httpErr.Code)
		assert.Equal(t, "Payment provider request failed", httpErr.Message)
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		httpErr := apperrors.ToHTTPError(fmt.Errorf("boom"))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	})

	t.Run("echo errors pass through", func(t *testing.T) {
		echoErr := echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		assert.Same(t, echoErr, apperrors.ToHTTPError(echoErr))
	})
}

func TestToGRPCError(t *testing.T) {
	assert.NoError(t, apperrors.ToGRPCError(nil))

	err := apperrors.ToGRPCError(apperrors.NotFound("User not found", nil))
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "User not found", status.Convert(err).Message())

	err = apperrors.ToGRPCError(fmt.Errorf("pq: connection refused"))
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, "Internal server error", status.Convert(err).Message())
}

func TestLogError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	apperrors.LogError(logger, apperrors.NewAppError(apperrors.ErrNotFound, "missing", nil), "lookup failed")
	apperrors.LogError(logger, fmt.Errorf("db down"), "consume failed", zap.String("user_id", "u1"))
	apperrors.LogError(logger, nil, "ignored")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, apperrors.ErrNotFound, entries[0].ContextMap()["error_code"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "u1", entries[1].ContextMap()["user_id"])
}
