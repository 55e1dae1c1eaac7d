package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// CheckoutService creates hosted payment links for plans and credit packs.
type CheckoutService struct {
	userRepo  domainRepo.UserRepository
	provider  provider.PaymentProvider
	catalog   *Catalog
	returnURL string
	logger    *zap.Logger
}

func NewCheckoutService(
	userRepo domainRepo.UserRepository,
	paymentProvider provider.PaymentProvider,
	catalog *Catalog,
	returnURL string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		userRepo:  userRepo,
		provider:  paymentProvider,
		catalog:   catalog,
		returnURL: returnURL,
		logger:    logger,
	}
}

// CreateSubscriptionCheckout returns a payment link for a paid plan
func (s *CheckoutService) CreateSubscriptionCheckout(ctx context.Context, userID string, req dto.SubscriptionCheckoutRequest) (*dto.CheckoutResponse, error) {
	plan, ok := model.ParsePlan(req.Plan)
	if !ok || !plan.IsPaid() {
		return nil, domainErrors.ErrUnknownPlan
	}
	cycle := model.ParseBillingCycle(req.BillingCycle)

	productID, ok := s.catalog.PlanProductID(plan, cycle)
	if !ok {
		s.logger.Error("No product configured for plan",
			zap.String("plan", string(plan)),
			zap.String("billing_cycle", string(cycle)))
		return nil, domainErrors.ErrUnknownPlan
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.CreateSubscriptionCheckout(ctx, &provider.CheckoutRequest{
		ProductID: productID,
		Quantity:  1,
		Customer:  provider.Customer{Email: user.Email, Name: user.Name},
		ReturnURL: s.returnURL,
		Metadata: map[string]string{
			"user_id":       user.ID,
			"plan":          string(plan),
			"billing_cycle": string(cycle),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription checkout: %w", err)
	}

	s.logger.Info("Subscription checkout created",
		zap.String("user_id", user.ID),
		zap.String("product_id", productID),
		zap.String("checkout_id", resp.ID))

	return &dto.CheckoutResponse{CheckoutID: resp.ID, PaymentLink: resp.PaymentLink}, nil
}

// CreateCreditPackCheckout returns a payment link for a one-off credit pack.
// The metadata marks the payment so the webhook grants the credits.
func (s *CheckoutService) CreateCreditPackCheckout(ctx context.Context, userID string, req dto.CreditPackCheckoutRequest) (*dto.CheckoutResponse, error) {
	productID, ok := s.catalog.PackProductID(req.Credits)
	if !ok {
		return nil, domainErrors.ErrUnknownCreditPack
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.CreateOneTimeCheckout(ctx, &provider.CheckoutRequest{
		ProductID: productID,
		Quantity:  1,
		Customer:  provider.Customer{Email: user.Email, Name: user.Name},
		ReturnURL: s.returnURL,
		Metadata: map[string]string{
			"type":    dto.MetadataTypeCreditPack,
			"credits": strconv.Itoa(req.Credits),
			"user_id": user.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credit pack checkout: %w", err)
	}

	s.logger.Info("Credit pack checkout created",
		zap.String("user_id", user.ID),
		zap.Int("credits", req.Credits),
		zap.String("checkout_id", resp.ID))

	return &dto.CheckoutResponse{CheckoutID: resp.ID, PaymentLink: resp.PaymentLink}, nil
}

func (s *CheckoutService) loadUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}
	return user, nil
}
