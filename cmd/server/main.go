package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/limiter"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/database"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/generator/gemini"
	grpcServer "github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/http"
	paymentProvider "github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/provider"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/ratelimit"
	"github.com/wekeepgrowing/uxpilot-billing/internal/usecase"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/logger"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/messaging"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
		Service:     cfg.Service.Name,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, cfg.Log.Level, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	// Redis is optional: it backs the shared rate limiter and event fan-out.
	var redisClient *messaging.RedisClient
	if cfg.Redis.Enabled() {
		redisClient, err = messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	var rateLimiter limiter.Limiter
	if cfg.RateLimit.Backend == config.RateLimitBackendRedis && redisClient != nil {
		rateLimiter = ratelimit.NewRedisLimiter(redisClient.Client(), cfg.Service.Name+":ratelimit:")
	} else {
		if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
			zapLogger.Warn("Redis rate limit backend requested without Redis, using in-memory limiter")
		}
		memoryLimiter := ratelimit.NewMemoryLimiter(time.Minute)
		defer memoryLimiter.Close()
		rateLimiter = memoryLimiter
	}

	var publisher messaging.Publisher
	if redisClient != nil {
		publisher = redisClient
	}

	paymentProv, err := paymentProvider.NewFactory(cfg, zapLogger).GetProvider(provider.ProviderTypeDodo)
	if err != nil {
		zapLogger.Fatal("Failed to create payment provider", zap.Error(err))
	}

	var designGenerator provider.DesignGenerator = gemini.Unavailable{}
	if cfg.Generator.APIKey != "" {
		generator, err := gemini.NewGenerator(context.Background(), cfg.Generator.APIKey, cfg.Generator.Model, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create design generator", zap.Error(err))
		}
		defer generator.Close()
		designGenerator = generator
	} else {
		zapLogger.Warn("Generator API key not set, design generation disabled")
	}

	var verifier crypto.SignatureVerifier
	if cfg.Dodo.WebhookSecret != "" {
		webhookVerifier, err := crypto.NewWebhookVerifier(cfg.Dodo.WebhookSecret)
		if err != nil {
			zapLogger.Fatal("Invalid webhook secret", zap.Error(err))
		}
		verifier = webhookVerifier
	} else if cfg.IsProduction() {
		zapLogger.Fatal("Webhook secret is required in production")
	} else {
		zapLogger.Warn("Webhook secret not set, accepting unsigned webhook deliveries")
	}

	catalog := usecase.NewCatalog(cfg.Products)
	entitlementService := usecase.NewEntitlementService(repos.User, repos.FeatureUsage, rateLimiter, cfg.RateLimit.Window, zapLogger)
	creditService := usecase.NewCreditService(repos.Credit, repos.User, repos.FeatureUsage, rateLimiter, zapLogger)
	subscriptionService := usecase.NewSubscriptionService(repos.Subscription, repos.User, paymentProv, catalog, zapLogger)
	webhookService := usecase.NewWebhookService(
		subscriptionService,
		repos.Subscription,
		repos.Payment,
		repos.Credit,
		repos.User,
		repos.WebhookEvent,
		publisher,
		catalog,
		zapLogger,
	)
	checkoutService := usecase.NewCheckoutService(repos.User, paymentProv, catalog, cfg.Dodo.ReturnURL, zapLogger)
	generationService := usecase.NewGenerationService(entitlementService, creditService, designGenerator, zapLogger)
	reconcileService := usecase.NewReconcileService(subscriptionService, repos.Subscription, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Dependencies{
		Credits:       creditService,
		Entitlements:  entitlementService,
		Subscriptions: subscriptionService,
		Checkout:      checkoutService,
		Generation:    generationService,
		Webhooks:      webhookService,
		Verifier:      verifier,
	})

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	if cfg.Reconcile.Interval > 0 {
		go runReconcileLoop(ctx, reconcileService, cfg.Reconcile.Interval, zapLogger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")
	grpcSrv.SetServing(false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shutdown complete")
}

func runReconcileLoop(ctx context.Context, reconcile *usecase.ReconcileService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := reconcile.SyncAll(ctx, false); err != nil {
				logger.Error("Subscription reconcile sweep failed", zap.Error(err))
			}
		}
	}
}
