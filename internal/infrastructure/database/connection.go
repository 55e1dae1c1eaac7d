package database

import (
	"fmt"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewConnection opens the postgres ledger store.
func NewConnection(cfg *config.DatabaseConfig, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	db, err := open(postgres.Open(cfg.DSN()), cfg, logLevel, log)
	if err != nil {
		return nil, err
	}

	log.Info("Database connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)
	return db, nil
}

// open applies the shared gorm settings and pool limits to any dialector.
func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      logger.NewGormLogger(log, logger.GormLevel(logLevel), slowQueryThreshold, true),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	// zero keeps database/sql defaults
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func Close(db *gorm.DB, log *zap.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	log.Info("Database connection closed")
	return nil
}
