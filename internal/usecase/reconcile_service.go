package usecase

import (
	"context"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/uxpilot-billing/internal/domain/repository"
	"go.uber.org/zap"
)

const reconcileBatchSize = 100

// reconcileStatuses are the local states the provider may still change.
var reconcileStatuses = []model.SubscriptionStatus{
	model.SubscriptionStatusActive,
	model.SubscriptionStatusSuspended,
	model.SubscriptionStatusPending,
}

// ReconcileSummary counts the outcome of one sweep.
type ReconcileSummary struct {
	Checked int
	Changed int
	Failed  int
	Results []entity.SyncResult
}

// ReconcileService pulls provider state for subscriptions that can still
// change, to repair missed webhooks.
type ReconcileService struct {
	subscriptions *SubscriptionService
	subRepo       domainRepo.SubscriptionRepository
	logger        *zap.Logger
}

func NewReconcileService(subscriptions *SubscriptionService, subRepo domainRepo.SubscriptionRepository, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{
		subscriptions: subscriptions,
		subRepo:       subRepo,
		logger:        logger,
	}
}

// SyncAll walks every non-terminal subscription. Individual failures are
// counted and logged; the sweep stops early only on a listing error or
// context cancellation. A dry run fetches provider status and reports
// changes without applying them.
func (s *ReconcileService) SyncAll(ctx context.Context, dryRun bool) (*ReconcileSummary, error) {
	summary := &ReconcileSummary{}
	afterID := ""

	for {
		batch, err := s.subRepo.ListByStatuses(ctx, reconcileStatuses, afterID, reconcileBatchSize)
		if err != nil {
			return summary, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			sub := &batch[i]
			summary.Checked++

			result, err := s.subscriptions.SyncSubscription(ctx, sub, dryRun)
			if err != nil {
				summary.Failed++
				s.logger.Warn("Failed to sync subscription",
					zap.String("subscription_id", sub.ID),
					zap.String("external_subscription_id", sub.ExternalSubscriptionID),
					zap.Error(err))
				continue
			}
			if result.Changed {
				summary.Changed++
				summary.Results = append(summary.Results, *result)
			}
		}

		afterID = batch[len(batch)-1].ID
		if len(batch) < reconcileBatchSize {
			break
		}
	}

	s.logger.Info("Subscription reconciliation finished",
		zap.Int("checked", summary.Checked),
		zap.Int("changed", summary.Changed),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", dryRun))
	return summary, nil
}
