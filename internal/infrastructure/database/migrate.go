package database

import (
	"fmt"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the billing service.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.CreditUsage{},
		&model.FeatureUsage{},
		&model.Subscription{},
		&model.Payment{},
		&model.WebhookEvent{},
	}
}

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if db.Dialector.Name() == "postgres" {
		if err := createCustomIndexes(db); err != nil {
			logger.Error("Failed to create custom indexes", zap.Error(err))
			return err
		}
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM tags cannot express
func createCustomIndexes(db *gorm.DB) error {
	// Reconciliation scans only the non-terminal subscriptions.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_subscriptions_reconcilable ON subscriptions (id) WHERE status IN ('ACTIVE', 'SUSPENDED', 'PENDING')`).Error; err != nil {
		return err
	}

	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_unfinished ON webhook_events (created_at) WHERE status IN ('processing', 'failed')`).Error; err != nil {
		return err
	}

	for name, check := range map[string]string{
		"chk_users_credits_used_non_negative":  "credits_used >= 0",
		"chk_users_credits_total_non_negative": "credits_total >= 0",
	} {
		stmt := fmt.Sprintf(`DO $$ BEGIN
			ALTER TABLE users ADD CONSTRAINT %s CHECK (%s);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`, name, check)
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
