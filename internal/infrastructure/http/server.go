package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/uxpilot-billing/internal/adapter/handler/http"
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/middleware/auth"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/logger"
	"go.uber.org/zap"
)

// Dependencies are the use cases exposed over HTTP.
type Dependencies struct {
	Credits       handlers.CreditUsecase
	Entitlements  handlers.EntitlementUsecase
	Subscriptions handlers.SubscriptionUsecase
	Checkout      handlers.CheckoutUsecase
	Generation    handlers.GenerationUsecase
	Webhooks      handlers.WebhookUsecase
	// Verifier is nil when webhook signatures are not checked.
	Verifier crypto.SignatureVerifier
}

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
	deps   Dependencies
}

func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins(cfg),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s := &Server{
		config: cfg,
		logger: log,
		echo:   e,
		deps:   deps,
	}
	s.setupRoutes()
	return s
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.Server.HTTP.AllowedOrigins) > 0 {
		return cfg.Server.HTTP.AllowedOrigins
	}
	if cfg.Service.ClientURL != "" {
		return []string{cfg.Service.ClientURL}
	}
	return []string{"*"}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	creditHandler := handlers.NewCreditHandler(s.logger, s.deps.Credits)
	entitlementHandler := handlers.NewEntitlementHandler(s.logger, s.deps.Entitlements)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.logger, s.deps.Subscriptions)
	checkoutHandler := handlers.NewCheckoutHandler(s.logger, s.deps.Checkout)
	designHandler := handlers.NewDesignHandler(s.logger, s.deps.Generation)
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.deps.Verifier, s.deps.Webhooks)

	// Webhook route (outside API versioning, authenticated by signature)
	s.echo.POST("/webhooks/dodo", webhookHandler.HandleWebhook)

	jwtConfig := auth.JWTConfig{
		Secret:    s.config.JWT.Secret,
		Logger:    s.logger,
		SkipPaths: s.config.JWT.SkipPaths,
	}

	// Protected routes (require JWT authentication)
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	credits := v1.Group("/credits")
	credits.GET("/balance", creditHandler.GetBalance)
	credits.GET("/usage", creditHandler.ListUsage)
	credits.POST("/purchase", creditHandler.Purchase)
	credits.POST("/transfer", creditHandler.Transfer)
	credits.POST("/consume", creditHandler.Consume)

	v1.POST("/entitlements/check", entitlementHandler.Check)

	subscriptions := v1.Group("/subscriptions")
	subscriptions.GET("/current", subscriptionHandler.GetCurrentSubscription)
	subscriptions.POST("", subscriptionHandler.CaptureSubscription)
	subscriptions.POST("/cancel", subscriptionHandler.CancelSubscription)
	subscriptions.POST("/sync", subscriptionHandler.SyncSubscription)
	v1.GET("/user/subscription-status", subscriptionHandler.GetSubscriptionStatus)

	checkout := v1.Group("/checkout")
	checkout.POST("/subscription", checkoutHandler.CreateSubscriptionCheckout)
	checkout.POST("/credit-pack", checkoutHandler.CreateCreditPackCheckout)

	v1.POST("/designs/generate", designHandler.Generate)
}
