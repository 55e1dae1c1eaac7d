package database

import (
	"github.com/wekeepgrowing/uxpilot-billing/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         domainRepo.UserRepository
	Credit       domainRepo.CreditRepository
	FeatureUsage domainRepo.FeatureUsageRepository
	Subscription domainRepo.SubscriptionRepository
	Payment      domainRepo.PaymentRepository
	WebhookEvent domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db, logger),
		Credit:       repository.NewCreditRepository(db, logger),
		FeatureUsage: repository.NewFeatureUsageRepository(db),
		Subscription: repository.NewSubscriptionRepository(db, logger),
		Payment:      repository.NewPaymentRepository(db, logger),
		WebhookEvent: repository.NewWebhookRepository(db, logger),
	}
}
