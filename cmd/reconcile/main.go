package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/database"
	paymentProvider "github.com/wekeepgrowing/uxpilot-billing/internal/infrastructure/provider"
	"github.com/wekeepgrowing/uxpilot-billing/internal/usecase"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	optionsFile := flag.String("options", "", "optional yaml file with reconcile options")
	dryRun := flag.Bool("dry-run", false, "report status changes without writing them")
	flag.Parse()

	_ = godotenv.Load()

	opts, err := loadOptions(*optionsFile)
	if err != nil {
		log.Fatalf("Failed to load reconcile options: %v", err)
	}
	if *dryRun {
		opts.DryRun = true
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.Service.Name + "-reconcile",
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

	paymentProv, err := paymentProvider.NewFactory(cfg, zapLogger).GetProvider(provider.ProviderTypeDodo)
	if err != nil {
		zapLogger.Fatal("Failed to create payment provider", zap.Error(err))
	}

	catalog := usecase.NewCatalog(cfg.Products)
	subscriptions := usecase.NewSubscriptionService(repos.Subscription, repos.User, paymentProv, catalog, zapLogger)
	reconcile := usecase.NewReconcileService(subscriptions, repos.Subscription, zapLogger)

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	zapLogger.Info("Starting subscription reconcile",
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("timeout", opts.Timeout))

	summary, err := reconcile.SyncAll(ctx, opts.DryRun)
	if err != nil {
		zapLogger.Error("Reconcile stopped early", zap.Error(err))
	}

	msg := "Subscription status changed"
	if opts.DryRun {
		msg = "Subscription status would change"
	}
	for _, result := range summary.Results {
		zapLogger.Info(msg,
			zap.String("subscription_id", result.SubscriptionID),
			zap.String("from", string(result.Previous)),
			zap.String("to", string(result.Current)))
	}
}
