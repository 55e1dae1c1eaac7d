package http_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	handlers "github.com/wekeepgrowing/uxpilot-billing/internal/adapter/handler/http"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"go.uber.org/zap"
)

func setupSubscriptionRoutes() (*mockSubscriptionUsecase, *mockCheckoutUsecase, *echo.Echo) {
	subs := new(mockSubscriptionUsecase)
	checkout := new(mockCheckoutUsecase)
	e := newTestEcho(true)

	h := handlers.NewSubscriptionHandler(zap.NewNop(), subs)
	e.GET("/api/v1/subscriptions/current", h.GetCurrentSubscription)
	e.POST("/api/v1/subscriptions", h.CaptureSubscription)
	e.POST("/api/v1/subscriptions/cancel", h.CancelSubscription)
	e.POST("/api/v1/subscriptions/sync", h.SyncSubscription)
	e.GET("/api/v1/user/subscription-status", h.GetSubscriptionStatus)

	ch := handlers.NewCheckoutHandler(zap.NewNop(), checkout)
	e.POST("/api/v1/checkout/subscription", ch.CreateSubscriptionCheckout)
	e.POST("/api/v1/checkout/credit-pack", ch.CreateCreditPackCheckout)

	return subs, checkout, e
}

func TestSubscriptionHandler_GetCurrent(t *testing.T) {
	subs, _, e := setupSubscriptionRoutes()
	subs.On("GetUserSubscription", mock.Anything, testUserID).Return(nil, nil).Once()

	rec := doJSON(e, http.MethodGet, "/api/v1/subscriptions/current", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	subs.On("GetUserSubscription", mock.Anything, testUserID).
		Return(&model.Subscription{ID: "sub-1", Plan: model.PlanPro, Status: model.SubscriptionStatusActive}, nil).Once()

	rec = doJSON(e, http.MethodGet, "/api/v1/subscriptions/current", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PRO", decodeBody(t, rec)["plan"])
}

func TestSubscriptionHandler_Capture(t *testing.T) {
	subs, _, e := setupSubscriptionRoutes()
	known := dto.CaptureSubscriptionRequest{SubscriptionID: "sub_ext_1", PlanID: "prod_std_m", PlanName: "standard"}
	unknown := dto.CaptureSubscriptionRequest{SubscriptionID: "sub_ext_2", PlanID: "prod_mystery"}
	subs.On("CaptureSubscription", mock.Anything, testUserID, known).
		Return(&model.Subscription{ID: "sub-1", Plan: model.PlanStandard}, nil)
	subs.On("CaptureSubscription", mock.Anything, testUserID, unknown).
		Return(nil, domainErrors.ErrUnknownPlan)

	rec := doJSON(e, http.MethodPost, "/api/v1/subscriptions", `{"subscriptionId":"sub_ext_1","planId":"prod_std_m","planName":"standard"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	rec = doJSON(e, http.MethodPost, "/api/v1/subscriptions", `{"subscriptionId":"sub_ext_2","planId":"prod_mystery"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown plan")

	rec = doJSON(e, http.MethodPost, "/api/v1/subscriptions", `{"planId":"prod_std_m"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	subs, _, e := setupSubscriptionRoutes()
	subs.On("CancelUserSubscription", mock.Anything, testUserID).Return(nil, domainErrors.ErrNoActiveSubscription).Once()

	rec := doJSON(e, http.MethodPost, "/api/v1/subscriptions/cancel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	subs.On("CancelUserSubscription", mock.Anything, testUserID).
		Return(&model.Subscription{ID: "sub-1", Status: model.SubscriptionStatusCancelled}, nil).Once()

	rec = doJSON(e, http.MethodPost, "/api/v1/subscriptions/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubscriptionHandler_SyncAndStatus(t *testing.T) {
	subs, _, e := setupSubscriptionRoutes()
	subs.On("SyncUserSubscription", mock.Anything, testUserID).Return(&entity.SyncResult{
		SubscriptionID: "sub-1",
		Previous:       model.SubscriptionStatusActive,
		Current:        model.SubscriptionStatusCancelled,
		Changed:        true,
	}, nil)
	subs.On("GetSubscriptionStatus", mock.Anything, testUserID).Return(nil, errors.New("db down"))

	rec := doJSON(e, http.MethodPost, "/api/v1/subscriptions/sync", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decodeBody(t, rec)["currentStatus"])

	rec = doJSON(e, http.MethodGet, "/api/v1/user/subscription-status", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestCheckoutHandler(t *testing.T) {
	_, checkout, e := setupSubscriptionRoutes()
	checkout.On("CreateSubscriptionCheckout", mock.Anything, testUserID, dto.SubscriptionCheckoutRequest{Plan: "pro", BillingCycle: "yearly"}).
		Return(&dto.CheckoutResponse{CheckoutID: "chk_1", PaymentLink: "https://pay.example/chk_1"}, nil)
	checkout.On("CreateCreditPackCheckout", mock.Anything, testUserID, dto.CreditPackCheckoutRequest{Credits: 720}).
		Return(nil, &provider.ProviderError{Code: "HTTP_502", Message: "Bad Gateway"})

	rec := doJSON(e, http.MethodPost, "/api/v1/checkout/subscription", `{"plan":"pro","billingCycle":"yearly"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://pay.example/chk_1", decodeBody(t, rec)["paymentLink"])

	rec = doJSON(e, http.MethodPost, "/api/v1/checkout/credit-pack", `{"credits":720}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Payment provider request failed", decodeBody(t, rec)["error"])

	rec = doJSON(e, http.MethodPost, "/api/v1/checkout/credit-pack", `{"credits":500}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	checkout.AssertNumberOfCalls(t, "CreateCreditPackCheckout", 1)
}
