package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/dto"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/uxpilot-billing/internal/domain/errors"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/limiter"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	transferLimitKey   = "transfer"
	transfersPerHour   = 5
	recentUsageLimit   = 10
	minPurchaseCredits = 50
	maxPurchaseCredits = 10000
	minTransferCredits = 10
	maxTransferCredits = 1000
	// credit_usages.description is varchar(255)
	maxDescriptionBytes = 255
)

// CreditService handles credit-related business logic
type CreditService struct {
	creditRepo  domainRepo.CreditRepository
	userRepo    domainRepo.UserRepository
	featureRepo domainRepo.FeatureUsageRepository
	limiter     limiter.Limiter
	logger      *zap.Logger
	now         func() time.Time
}

// NewCreditService creates a new credit service instance
func NewCreditService(
	creditRepo domainRepo.CreditRepository,
	userRepo domainRepo.UserRepository,
	featureRepo domainRepo.FeatureUsageRepository,
	rateLimiter limiter.Limiter,
	logger *zap.Logger,
) *CreditService {
	return &CreditService{
		creditRepo:  creditRepo,
		userRepo:    userRepo,
		featureRepo: featureRepo,
		limiter:     rateLimiter,
		logger:      logger,
		now:         time.Now,
	}
}

// ConsumeCredits records a metered action after its side effect happened.
// It does not re-check the balance; callers run CanUserPerformAction first.
func (s *CreditService) ConsumeCredits(ctx context.Context, userID string, credits int, action model.Action, resourceID *string) error {
	if credits <= 0 {
		return domainErrors.ErrInvalidAmount
	}

	err := s.creditRepo.Consume(ctx, s.usageEntry(userID, credits, action, resourceID))
	if err != nil {
		return fmt.Errorf("failed to consume credits: %w", err)
	}
	return nil
}

// DebitCredits is ConsumeCredits guarded by the remaining balance.
// Returns ErrInsufficientCredits without mutating anything when short.
func (s *CreditService) DebitCredits(ctx context.Context, userID string, credits int, action model.Action, resourceID *string) (*model.User, error) {
	if credits <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	user, err := s.creditRepo.Debit(ctx, s.usageEntry(userID, credits, action, resourceID))
	if err != nil {
		if errors.Is(err, domainErrors.ErrInsufficientCredits) {
			s.logger.Info("Debit rejected for insufficient credits",
				zap.String("user_id", userID),
				zap.Int("credits", credits),
				zap.String("action", string(action)))
			return nil, err
		}
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}
	return user, nil
}

func (s *CreditService) usageEntry(userID string, credits int, action model.Action, resourceID *string) domainRepo.LedgerEntry {
	return domainRepo.LedgerEntry{
		UserID:      userID,
		Credits:     credits,
		Action:      action,
		Description: fmt.Sprintf("Used %d credits for %s", credits, action),
		ResourceID:  resourceID,
		Month:       model.MonthKey(s.now()),
	}
}

// PurchaseCredits adds credits to the user's ceiling without a provider payment
func (s *CreditService) PurchaseCredits(ctx context.Context, userID string, credits int) (*model.User, error) {
	if credits < minPurchaseCredits || credits > maxPurchaseCredits {
		return nil, domainErrors.ErrInvalidAmount
	}

	user, err := s.creditRepo.Grant(ctx, domainRepo.LedgerEntry{
		UserID:      userID,
		Credits:     credits,
		Action:      model.ActionManualPurchase,
		Description: fmt.Sprintf("Purchased %d credits", credits),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purchase credits: %w", err)
	}
	return user, nil
}

// TransferCredits moves part of the sender's remaining balance to another user
func (s *CreditService) TransferCredits(ctx context.Context, senderID string, req dto.TransferCreditsRequest) (*entity.TransferResult, error) {
	if req.Credits < minTransferCredits || req.Credits > maxTransferCredits {
		return nil, domainErrors.ErrInvalidAmount
	}

	allowed, err := s.limiter.Allow(ctx, limiter.Key(senderID, transferLimitKey), transfersPerHour, time.Hour)
	if err != nil {
		s.logger.Warn("Rate limiter unavailable for transfer, allowing request",
			zap.String("sender_id", senderID),
			zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil, domainErrors.ErrTransferRateLimited
	}

	sender, err := s.userRepo.FindByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}
	if sender == nil {
		return nil, domainErrors.ErrUserNotFound
	}

	email := normalizeEmail(req.RecipientEmail)
	if strings.EqualFold(sender.Email, email) {
		return nil, domainErrors.ErrSelfTransfer
	}

	recipient, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}
	if recipient == nil {
		return nil, fmt.Errorf("recipient %s: %w", email, domainErrors.ErrUserNotFound)
	}
	if recipient.ID == sender.ID {
		return nil, domainErrors.ErrSelfTransfer
	}

	entry := domainRepo.TransferEntry{
		TransferID:          uuid.NewString(),
		SenderID:            sender.ID,
		RecipientID:         recipient.ID,
		Credits:             req.Credits,
		SentDescription:     transferDescription("Sent", req.Credits, "to", recipient.Email, req.Message),
		ReceivedDescription: transferDescription("Received", req.Credits, "from", sender.Email, req.Message),
	}

	updated, err := s.creditRepo.Transfer(ctx, entry)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInsufficientCredits) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to transfer credits: %w", err)
	}

	return &entity.TransferResult{
		TransferID:      entry.TransferID,
		Credits:         req.Credits,
		RecipientEmail:  recipient.Email,
		SenderRemaining: updated.Remaining(),
		CreatedAt:       s.now(),
	}, nil
}

func transferDescription(verb string, credits int, preposition, counterpart, message string) string {
	desc := fmt.Sprintf("%s %d credits %s %s", verb, credits, preposition, counterpart)
	if message != "" {
		desc += ": " + message
	}
	return truncateUTF8(desc, maxDescriptionBytes)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// GetBalance returns the user's balance with recent ledger rows and this month's counters
func (s *CreditService) GetBalance(ctx context.Context, userID string) (*entity.Balance, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}

	recent, err := s.creditRepo.ListRecentUsage(ctx, userID, recentUsageLimit)
	if err != nil {
		return nil, err
	}

	usage, err := s.featureRepo.FindByUserAndMonth(ctx, userID, model.MonthKey(s.now()))
	if err != nil {
		return nil, err
	}

	return entity.NewBalance(user, recent, usage), nil
}

// ListUsage returns the user's ledger, newest first
func (s *CreditService) ListUsage(ctx context.Context, userID string, page entity.PaginationParams) (*dto.UsageListResponse, error) {
	page = page.Normalize()

	rows, total, err := s.creditRepo.ListUsage(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}

	return &dto.UsageListResponse{
		Data:       dto.ToCreditUsageDTOs(rows),
		Pagination: entity.NewPaginationMeta(page, total),
	}, nil
}
