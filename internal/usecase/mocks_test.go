package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockFeatureUsageRepository is a mock implementation of FeatureUsageRepository
type MockFeatureUsageRepository struct {
	mock.Mock
}

func (m *MockFeatureUsageRepository) FindByUserAndMonth(ctx context.Context, userID, month string) (*model.FeatureUsage, error) {
	args := m.Called(ctx, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FeatureUsage), args.Error(1)
}

// MockCreditRepository is a mock implementation of CreditRepository
type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) Consume(ctx context.Context, entry domainRepo.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCreditRepository) Debit(ctx context.Context, entry domainRepo.LedgerEntry) (*model.User, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCreditRepository) Grant(ctx context.Context, entry domainRepo.LedgerEntry) (*model.User, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCreditRepository) Transfer(ctx context.Context, entry domainRepo.TransferEntry) (*model.User, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockCreditRepository) ListRecentUsage(ctx context.Context, userID string, limit int) ([]model.CreditUsage, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]model.CreditUsage), args.Error(1)
}

func (m *MockCreditRepository) ListUsage(ctx context.Context, userID string, offset, limit int) ([]model.CreditUsage, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]model.CreditUsage), args.Get(1).(int64), args.Error(2)
}

// MockLimiter is a mock implementation of limiter.Limiter
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

// MockPaymentProvider is a mock implementation of provider.PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateSubscriptionCheckout(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutResponse), args.Error(1)
}

func (m *MockPaymentProvider) CreateOneTimeCheckout(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutResponse), args.Error(1)
}

func (m *MockPaymentProvider) GetSubscription(ctx context.Context, subscriptionID string) (*provider.RemoteSubscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.RemoteSubscription), args.Error(1)
}

func (m *MockPaymentProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockPaymentProvider) GetProviderName() string {
	return string(provider.ProviderTypeDodo)
}

// MockDesignGenerator is a mock implementation of provider.DesignGenerator
type MockDesignGenerator struct {
	mock.Mock
}

func (m *MockDesignGenerator) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GeneratedDesign, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.GeneratedDesign), args.Error(1)
}

// MockPublisher records published billing events
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}
