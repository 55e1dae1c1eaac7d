package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"go.uber.org/zap"
)

type stubEntitlements struct {
	userID string
	action model.Action
}

func (s *stubEntitlements) CanUserPerformAction(ctx context.Context, userID string, action model.Action, creditsRequired int) (*entity.Decision, error) {
	s.userID, s.action = userID, action
	return entity.Allow(84), nil
}

type stubWebhooks struct{ calls int }

func (s *stubWebhooks) HandleEvent(ctx context.Context, deliveryID string, event *dto.WebhookEvent, raw []byte) error {
	s.calls++
	return nil
}

func newTestServer(entitlements *stubEntitlements, webhooks *stubWebhooks) *Server {
	cfg := &config.Config{
		Service: config.ServiceConfig{Name: "billing", ClientURL: "https://app.example.com"},
		JWT:     config.JWTConfig{Secret: "jwt-secret"},
	}
	return NewServer(cfg, zap.NewNop(), Dependencies{Entitlements: entitlements, Webhooks: webhooks})
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(&stubEntitlements{}, &stubWebhooks{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_ProtectedRoutesRequireJWT(t *testing.T) {
	entitlements := &stubEntitlements{}
	s := newTestServer(entitlements, &stubWebhooks{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entitlements/check", strings.NewReader(`{"action":"generate_design"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("jwt-secret"))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/entitlements/check", strings.NewReader(`{"action":"generate_design"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", entitlements.userID)
	assert.Equal(t, model.ActionGenerateDesign, entitlements.action)
}

func TestServer_WebhookIsPublic(t *testing.T) {
	webhooks := &stubWebhooks{}
	s := newTestServer(&stubEntitlements{}, webhooks)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/dodo", strings.NewReader(`{"type":"payment.failed","data":{"payment_id":"pay_1"}}`))
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, webhooks.calls)
}
