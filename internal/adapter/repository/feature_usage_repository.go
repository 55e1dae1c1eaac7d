package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type featureUsageRepository struct {
	db *gorm.DB
}

func NewFeatureUsageRepository(db *gorm.DB) domainRepo.FeatureUsageRepository {
	return &featureUsageRepository{db: db}
}

func (r *featureUsageRepository) FindByUserAndMonth(ctx context.Context, userID, month string) (*model.FeatureUsage, error) {
	var usage model.FeatureUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", userID, month).
		First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feature usage: %w", err)
	}
	return &usage, nil
}

// incrementFeatureCounter upserts the (user, month) row and adds one to
// counter. Must run inside the caller's transaction.
func incrementFeatureCounter(tx *gorm.DB, userID, month string, counter model.FeatureCounter) error {
	if counter == model.CounterNone {
		return nil
	}

	row := &model.FeatureUsage{UserID: userID, Month: month}
	switch counter {
	case model.CounterDesignFiles:
		row.DesignFiles = 1
	case model.CounterScreenFlows:
		row.ScreenFlows = 1
	case model.CounterFigmaExports:
		row.FigmaExports = 1
	case model.CounterCodeExports:
		row.CodeExports = 1
	default:
		return fmt.Errorf("unknown feature counter %q", counter)
	}

	column := string(counter)
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       gorm.Expr(model.FeatureUsage{}.TableName()+"."+column+" + ?", 1),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert feature usage: %w", err)
	}
	return nil
}
