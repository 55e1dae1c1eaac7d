package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"github.com/wekeepgrowing/uxpilot-billing/pkg/messaging"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// BillingEventsChannel receives a notice for every processed webhook event.
const BillingEventsChannel = "billing.events"

// BillingEvent is published after a webhook event was applied.
type BillingEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	Reference   string    `json:"reference"`
	Email       string    `json:"email,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// WebhookService applies payment provider events to the ledger.
type WebhookService struct {
	subscriptions *SubscriptionService
	subRepo       domainRepo.SubscriptionRepository
	paymentRepo   domainRepo.PaymentRepository
	creditRepo    domainRepo.CreditRepository
	userRepo      domainRepo.UserRepository
	eventRepo     domainRepo.WebhookEventRepository
	publisher     messaging.Publisher
	catalog       *Catalog
	logger        *zap.Logger
	now           func() time.Time
}

// NewWebhookService creates a new webhook service. publisher may be nil.
func NewWebhookService(
	subscriptions *SubscriptionService,
	subRepo domainRepo.SubscriptionRepository,
	paymentRepo domainRepo.PaymentRepository,
	creditRepo domainRepo.CreditRepository,
	userRepo domainRepo.UserRepository,
	eventRepo domainRepo.WebhookEventRepository,
	publisher messaging.Publisher,
	catalog *Catalog,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		subscriptions: subscriptions,
		subRepo:       subRepo,
		paymentRepo:   paymentRepo,
		creditRepo:    creditRepo,
		userRepo:      userRepo,
		eventRepo:     eventRepo,
		publisher:     publisher,
		catalog:       catalog,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleEvent processes one delivery. Handler failures are logged and
// recorded but never returned, so the provider does not retry events this
// service cannot apply. The only error is ErrDeliveryInFlight, returned when
// another attempt is still applying the same delivery id so the provider
// tries again later. deliveryID may be empty when the provider sent none.
func (s *WebhookService) HandleEvent(ctx context.Context, deliveryID string, event *dto.WebhookEvent, raw []byte) error {
	logger := s.logger.With(
		zap.String("event_id", deliveryID),
		zap.String("event_type", event.Type),
		zap.String("reference", event.Data.ID))

	if deliveryID != "" {
		state, err := s.eventRepo.Begin(ctx, deliveryID, event.Type, raw)
		switch {
		case err != nil:
			logger.Warn("Failed to record webhook delivery, processing anyway", zap.Error(err))
		case state == domainRepo.DeliveryCompleted:
			logger.Info("Webhook event already processed, skipping")
			return nil
		case state == domainRepo.DeliveryInFlight:
			logger.Warn("Webhook event is being processed by another attempt")
			return domainErrors.ErrDeliveryInFlight
		}
	}

	err := s.dispatch(ctx, event)
	if err != nil {
		logger.Error("Webhook handler failed", zap.Error(err))
		if deliveryID != "" {
			if markErr := s.eventRepo.MarkFailed(ctx, deliveryID, err); markErr != nil {
				logger.Warn("Failed to mark webhook event failed", zap.Error(markErr))
			}
		}
		return nil
	}

	if deliveryID != "" {
		if markErr := s.eventRepo.MarkCompleted(ctx, deliveryID); markErr != nil {
			logger.Warn("Failed to mark webhook event completed", zap.Error(markErr))
		}
	}
	s.publish(ctx, deliveryID, event)
	return nil
}

// dispatch runs the handler for the event type, turning panics into errors.
func (s *WebhookService) dispatch(ctx context.Context, event *dto.WebhookEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s handler: %v", event.Type, r)
		}
	}()

	switch event.Type {
	case dto.EventSubscriptionCreated, dto.EventSubscriptionActivated:
		return s.handleSubscriptionActivated(ctx, &event.Data)
	case dto.EventSubscriptionCancelled, dto.EventSubscriptionCanceled:
		return s.handleSubscriptionCancelled(ctx, &event.Data)
	case dto.EventSubscriptionSuspended:
		return s.handleSubscriptionSuspended(ctx, &event.Data)
	case dto.EventPaymentCompleted:
		return s.handlePaymentCompleted(ctx, &event.Data)
	case dto.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, &event.Data)
	default:
		s.logger.Info("Ignoring unhandled webhook event type", zap.String("event_type", event.Type))
		return nil
	}
}

func (s *WebhookService) handleSubscriptionActivated(ctx context.Context, data *dto.WebhookData) error {
	externalID := data.SubscriptionRef()

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(data.Customer.Email))
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Error("User not found for subscription activation",
			zap.String("email", data.Customer.Email),
			zap.String("external_subscription_id", externalID))
		return nil
	}

	product, ok := s.catalog.LookupPlan(data.ProductID)
	if !ok {
		s.logger.Error("Unknown product for subscription activation",
			zap.String("product_id", data.ProductID),
			zap.String("external_subscription_id", externalID))
		return nil
	}

	sub, err := s.subscriptions.ActivateSubscription(ctx, CreateSubscriptionParams{
		UserID:                 user.ID,
		ExternalSubscriptionID: externalID,
		ExternalPlanID:         data.ProductID,
		Plan:                   product.Plan,
		BillingCycle:           product.BillingCycle,
		Amount:                 data.Amount,
		Currency:               strings.ToUpper(data.Currency),
		Credits:                product.Credits,
		NextBillingDate:        s.webhookTime("next_billing_date", data.NextBillingDate),
	})
	if err != nil {
		return err
	}

	s.logger.Info("Subscription activated",
		zap.String("subscription_id", sub.ID),
		zap.String("user_id", user.ID),
		zap.String("plan", string(sub.Plan)),
		zap.Int("credits", sub.CreditsIncluded))
	return nil
}

func (s *WebhookService) handleSubscriptionCancelled(ctx context.Context, data *dto.WebhookData) error {
	externalID := data.SubscriptionRef()

	sub, err := s.subRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Warn("Subscription not found for cancellation",
			zap.String("external_subscription_id", externalID))
		return nil
	}

	_, err = s.subRepo.CancelAndDowngrade(ctx, sub.ID, cancelTime(s.webhookTime("cancelled_at", data.CancelledAt), s.now()))
	return err
}

func (s *WebhookService) handleSubscriptionSuspended(ctx context.Context, data *dto.WebhookData) error {
	externalID := data.SubscriptionRef()

	affected, err := s.subRepo.UpdateStatusByExternalID(ctx, externalID, model.SubscriptionStatusSuspended)
	if err != nil {
		return err
	}
	if affected == 0 {
		s.logger.Warn("Subscription not found for suspension",
			zap.String("external_subscription_id", externalID))
	}
	return nil
}

func (s *WebhookService) handlePaymentCompleted(ctx context.Context, data *dto.WebhookData) error {
	if data.MetadataType() == dto.MetadataTypeCreditPack {
		return s.fulfillCreditPack(ctx, data)
	}
	return s.recordPayment(ctx, data, model.PaymentStatusCompleted, model.SubscriptionStatusActive)
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, data *dto.WebhookData) error {
	return s.recordPayment(ctx, data, model.PaymentStatusFailed, model.SubscriptionStatusSuspended)
}

// fulfillCreditPack grants the pack's credits. Unmapped products are
// skipped rather than failed so the provider stops redelivering them.
func (s *WebhookService) fulfillCreditPack(ctx context.Context, data *dto.WebhookData) error {
	credits, ok := s.catalog.PackCredits(data.ProductID)
	if !ok || credits <= 0 {
		s.logger.Warn("Unknown credit pack product, skipping",
			zap.String("product_id", data.ProductID))
		return nil
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(data.Customer.Email))
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Error("User not found for credit pack purchase",
			zap.String("email", data.Customer.Email),
			zap.String("product_id", data.ProductID))
		return nil
	}

	paymentID := data.PaymentRef()
	updated, err := s.creditRepo.Grant(ctx, domainRepo.LedgerEntry{
		UserID:      user.ID,
		Credits:     credits,
		Action:      model.ActionCreditPurchase,
		Description: fmt.Sprintf("Purchased %d credits", credits),
		ResourceID:  &paymentID,
	})
	if errors.Is(err, domainErrors.ErrAlreadyGranted) {
		s.logger.Info("Credit pack payment already fulfilled, skipping",
			zap.String("user_id", user.ID),
			zap.String("payment_id", paymentID))
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("Credit pack fulfilled",
		zap.String("user_id", user.ID),
		zap.String("payment_id", paymentID),
		zap.Int("credits", credits),
		zap.Int("credits_total", updated.CreditsTotal))
	return nil
}

func (s *WebhookService) recordPayment(ctx context.Context, data *dto.WebhookData, status model.PaymentStatus, next model.SubscriptionStatus) error {
	externalID := data.SubscriptionRef()

	sub, err := s.subRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Warn("Subscription not found for payment",
			zap.String("external_subscription_id", externalID),
			zap.String("payment_status", string(status)))
		return nil
	}

	currency := strings.ToUpper(data.Currency)
	if currency == "" {
		currency = sub.Currency
	}

	payment := &model.Payment{
		SubscriptionID:    sub.ID,
		ExternalPaymentID: data.PaymentRef(),
		Amount:            data.Amount,
		Currency:          currency,
		Status:            status,
		Metadata:          datatypes.JSON(data.MetadataJSON()),
	}
	if err := s.paymentRepo.RecordWithStatus(ctx, payment, next); err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (s *WebhookService) publish(ctx context.Context, deliveryID string, event *dto.WebhookEvent) {
	if s.publisher == nil {
		return
	}

	msg := BillingEvent{
		EventID:     deliveryID,
		Type:        event.Type,
		Reference:   event.Data.ID,
		Email:       event.Data.Customer.Email,
		ProcessedAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, BillingEventsChannel, msg); err != nil {
		s.logger.Warn("Failed to publish billing event",
			zap.String("event_type", event.Type),
			zap.Error(err))
	}
}

// webhookTime parses a payload timestamp. Unparseable values are logged
// and treated as absent.
func (s *WebhookService) webhookTime(field, value string) *time.Time {
	t, err := dto.ParseWebhookTime(value)
	if err != nil {
		s.logger.Warn("Ignoring malformed webhook timestamp",
			zap.String("field", field),
			zap.Error(err))
		return nil
	}
	return t
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
