package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	handlers "github.com/wekeepgrowing/uxpilot-billing/internal/adapter/handler/http"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/middleware/auth"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/logger"
	"go.uber.org/zap"
)

const testUserID = "user-1"

// newTestEcho mirrors the server setup: validator, zap error handler and an
// authenticated user injected in place of the JWT middleware.
func newTestEcho(authenticated bool) *echo.Echo {
	e := echo.New()
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, zap.NewNop())
	if authenticated {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				auth.WithUser(c, &auth.AuthUser{UserID: testUserID, Email: "owner@example.com"})
				return next(c)
			}
		})
	}
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type mockCreditUsecase struct{ mock.Mock }

func (m *mockCreditUsecase) ConsumeCredits(ctx context.Context, userID string, credits int, action model.Action, resourceID *string) error {
	return m.Called(ctx, userID, credits, action, resourceID).Error(0)
}

func (m *mockCreditUsecase) DebitCredits(ctx context.Context, userID string, credits int, action model.Action, resourceID *string) (*model.User, error) {
	args := m.Called(ctx, userID, credits, action, resourceID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockCreditUsecase) PurchaseCredits(ctx context.Context, userID string, credits int) (*model.User, error) {
	args := m.Called(ctx, userID, credits)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockCreditUsecase) TransferCredits(ctx context.Context, senderID string, req dto.TransferCreditsRequest) (*entity.TransferResult, error) {
	args := m.Called(ctx, senderID, req)
	result, _ := args.Get(0).(*entity.TransferResult)
	return result, args.Error(1)
}

func (m *mockCreditUsecase) GetBalance(ctx context.Context, userID string) (*entity.Balance, error) {
	args := m.Called(ctx, userID)
	balance, _ := args.Get(0).(*entity.Balance)
	return balance, args.Error(1)
}

func (m *mockCreditUsecase) ListUsage(ctx context.Context, userID string, page entity.PaginationParams) (*dto.UsageListResponse, error) {
	args := m.Called(ctx, userID, page)
	resp, _ := args.Get(0).(*dto.UsageListResponse)
	return resp, args.Error(1)
}

type mockEntitlementUsecase struct{ mock.Mock }

func (m *mockEntitlementUsecase) CanUserPerformAction(ctx context.Context, userID string, action model.Action, creditsRequired int) (*entity.Decision, error) {
	args := m.Called(ctx, userID, action, creditsRequired)
	decision, _ := args.Get(0).(*entity.Decision)
	return decision, args.Error(1)
}

type mockSubscriptionUsecase struct{ mock.Mock }

func (m *mockSubscriptionUsecase) GetUserSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	args := m.Called(ctx, userID)
	sub, _ := args.Get(0).(*model.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionUsecase) CaptureSubscription(ctx context.Context, userID string, req dto.CaptureSubscriptionRequest) (*model.Subscription, error) {
	args := m.Called(ctx, userID, req)
	sub, _ := args.Get(0).(*model.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionUsecase) CancelUserSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	args := m.Called(ctx, userID)
	sub, _ := args.Get(0).(*model.Subscription)
	return sub, args.Error(1)
}

func (m *mockSubscriptionUsecase) SyncUserSubscription(ctx context.Context, userID string) (*entity.SyncResult, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*entity.SyncResult)
	return result, args.Error(1)
}

func (m *mockSubscriptionUsecase) GetSubscriptionStatus(ctx context.Context, userID string) (*entity.SubscriptionStatus, error) {
	args := m.Called(ctx, userID)
	status, _ := args.Get(0).(*entity.SubscriptionStatus)
	return status, args.Error(1)
}

type mockCheckoutUsecase struct{ mock.Mock }

func (m *mockCheckoutUsecase) CreateSubscriptionCheckout(ctx context.Context, userID string, req dto.SubscriptionCheckoutRequest) (*dto.CheckoutResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.CheckoutResponse)
	return resp, args.Error(1)
}

func (m *mockCheckoutUsecase) CreateCreditPackCheckout(ctx context.Context, userID string, req dto.CreditPackCheckoutRequest) (*dto.CheckoutResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.CheckoutResponse)
	return resp, args.Error(1)
}

type mockGenerationUsecase struct{ mock.Mock }

func (m *mockGenerationUsecase) GenerateDesign(ctx context.Context, userID string, req dto.GenerateDesignRequest) (*dto.GenerateDesignResponse, *entity.Decision, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.GenerateDesignResponse)
	decision, _ := args.Get(1).(*entity.Decision)
	return resp, decision, args.Error(2)
}

type mockWebhookUsecase struct{ mock.Mock }

func (m *mockWebhookUsecase) HandleEvent(ctx context.Context, deliveryID string, event *dto.WebhookEvent, raw []byte) error {
	return m.Called(ctx, deliveryID, event, raw).Error(0)
}

