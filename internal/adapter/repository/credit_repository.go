package repository

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditRepository implements the CreditRepository interface
type creditRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCreditRepository creates a new credit repository instance
func NewCreditRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CreditRepository {
	return &creditRepository{
		db:     db,
		logger: logger,
	}
}

// Consume adds to credits_used without checking the remaining balance
func (r *creditRepository) Consume(ctx context.Context, entry domainRepo.LedgerEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("id = ?", entry.UserID).
			Updates(map[string]interface{}{
				"credits_used": gorm.Expr("credits_used + ?", entry.Credits),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to increment credits used: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.ErrUserNotFound
		}

		return r.appendUsage(tx, entry, entry.Credits)
	})
	if err != nil {
		r.logger.Error("Failed to consume credits",
			zap.String("user_id", entry.UserID),
			zap.Int("credits", entry.Credits),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return err
	}

	r.logger.Info("Credits consumed",
		zap.String("user_id", entry.UserID),
		zap.Int("credits", entry.Credits),
		zap.String("action", string(entry.Action)))
	return nil
}

// Debit is the conditional form of Consume. The WHERE clause makes the
// balance check and the increment a single statement.
func (r *creditRepository) Debit(ctx context.Context, entry domainRepo.LedgerEntry) (*model.User, error) {
	var user model.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debitUser(tx, entry.UserID, entry.Credits); err != nil {
			return err
		}
		if err := r.appendUsage(tx, entry, entry.Credits); err != nil {
			return err
		}
		return tx.Where("id = ?", entry.UserID).First(&user).Error
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrInsufficientCredits) {
			r.logger.Error("Failed to debit credits",
				zap.String("user_id", entry.UserID),
				zap.Int("credits", entry.Credits),
				zap.Error(err))
		}
		return nil, err
	}

	return &user, nil
}

// Grant raises the user's ceiling and records a negative ledger row
func (r *creditRepository) Grant(ctx context.Context, entry domainRepo.LedgerEntry) (*model.User, error) {
	var user model.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.Action == model.ActionCreditPurchase && entry.ResourceID != nil {
			// The ledger row goes first so a second grant for the same
			// payment stops before touching the balance.
			if err := claimPurchase(tx, entry); err != nil {
				return err
			}
		} else if err := r.appendUsage(tx, entry, -entry.Credits); err != nil {
			return err
		}
		if err := grantUser(tx, entry.UserID, entry.Credits); err != nil {
			return err
		}
		return tx.Where("id = ?", entry.UserID).First(&user).Error
	})
	if errors.Is(err, domainErrors.ErrAlreadyGranted) {
		r.logger.Info("Credits already granted for payment",
			zap.String("user_id", entry.UserID),
			zap.String("resource_id", *entry.ResourceID))
		return nil, err
	}
	if err != nil {
		r.logger.Error("Failed to grant credits",
			zap.String("user_id", entry.UserID),
			zap.Int("credits", entry.Credits),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Credits granted",
		zap.String("user_id", entry.UserID),
		zap.Int("credits", entry.Credits),
		zap.Int("credits_total", user.CreditsTotal))
	return &user, nil
}

// Transfer moves credits from sender to recipient in one transaction.
// Rows are locked in id order so opposite transfers cannot deadlock.
func (r *creditRepository) Transfer(ctx context.Context, entry domainRepo.TransferEntry) (*model.User, error) {
	var sender model.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{entry.SenderID, entry.RecipientID}
		if ids[1] < ids[0] {
			ids[0], ids[1] = ids[1], ids[0]
		}
		var locked []model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&locked).Error; err != nil {
			return fmt.Errorf("failed to lock transfer accounts: %w", err)
		}
		if len(locked) != 2 {
			return domainErrors.ErrUserNotFound
		}

		if err := debitUser(tx, entry.SenderID, entry.Credits); err != nil {
			return err
		}
		if err := grantUser(tx, entry.RecipientID, entry.Credits); err != nil {
			return err
		}

		transferID := entry.TransferID
		rows := []model.CreditUsage{
			{
				UserID:      entry.SenderID,
				CreditsUsed: entry.Credits,
				Action:      model.ActionTransferSent,
				Description: entry.SentDescription,
				ResourceID:  &transferID,
			},
			{
				UserID:      entry.RecipientID,
				CreditsUsed: -entry.Credits,
				Action:      model.ActionTransferReceived,
				Description: entry.ReceivedDescription,
				ResourceID:  &transferID,
			},
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to record transfer: %w", err)
		}

		return tx.Where("id = ?", entry.SenderID).First(&sender).Error
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrInsufficientCredits) {
			r.logger.Error("Failed to transfer credits",
				zap.String("transfer_id", entry.TransferID),
				zap.String("sender_id", entry.SenderID),
				zap.String("recipient_id", entry.RecipientID),
				zap.Error(err))
		}
		return nil, err
	}

	r.logger.Info("Credits transferred",
		zap.String("transfer_id", entry.TransferID),
		zap.String("sender_id", entry.SenderID),
		zap.String("recipient_id", entry.RecipientID),
		zap.Int("credits", entry.Credits))
	return &sender, nil
}

func (r *creditRepository) ListRecentUsage(ctx context.Context, userID string, limit int) ([]model.CreditUsage, error) {
	var rows []model.CreditUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list credit usage: %w", err)
	}
	return rows, nil
}

func (r *creditRepository) ListUsage(ctx context.Context, userID string, offset, limit int) ([]model.CreditUsage, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CreditUsage{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count credit usage: %w", err)
	}

	var rows []model.CreditUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list credit usage: %w", err)
	}
	return rows, total, nil
}

// appendUsage writes the ledger row and bumps the monthly counter
func (r *creditRepository) appendUsage(tx *gorm.DB, entry domainRepo.LedgerEntry, signed int) error {
	usage := &model.CreditUsage{
		UserID:      entry.UserID,
		CreditsUsed: signed,
		Action:      entry.Action,
		Description: entry.Description,
		ResourceID:  entry.ResourceID,
	}
	if err := tx.Create(usage).Error; err != nil {
		return fmt.Errorf("failed to create credit usage: %w", err)
	}

	if entry.Month == "" {
		return nil
	}
	return incrementFeatureCounter(tx, entry.UserID, entry.Month, entry.Action.Counter())
}

// claimPurchase inserts the purchase row unless the payment already has one.
// The conflict target matches idx_credit_usages_purchase_resource.
func claimPurchase(tx *gorm.DB, entry domainRepo.LedgerEntry) error {
	usage := &model.CreditUsage{
		UserID:      entry.UserID,
		CreditsUsed: -entry.Credits,
		Action:      entry.Action,
		Description: entry.Description,
		ResourceID:  entry.ResourceID,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "action"}, {Name: "resource_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "action = 'credit_purchase'"}}},
		DoNothing:   true,
	}).Create(usage)
	if result.Error != nil {
		return fmt.Errorf("failed to create credit usage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrAlreadyGranted
	}

	if entry.Month == "" {
		return nil
	}
	return incrementFeatureCounter(tx, entry.UserID, entry.Month, entry.Action.Counter())
}

func debitUser(tx *gorm.DB, userID string, credits int) error {
	result := tx.Model(&model.User{}).
		Where("id = ? AND credits_total - credits_used >= ?", userID, credits).
		Updates(map[string]interface{}{
			"credits_used": gorm.Expr("credits_used + ?", credits),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to debit credits: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var user model.User
	if err := tx.Select("id", "credits_total", "credits_used").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainErrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user after debit: %w", err)
	}
	return domainErrors.NewInsufficientBalanceError(credits, user.Remaining())
}

func grantUser(tx *gorm.DB, userID string, credits int) error {
	result := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"credits_total": gorm.Expr("credits_total + ?", credits),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to grant credits: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}
