package repository

import (
	"context"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
)

// LedgerEntry describes one balance mutation and its audit row.
type LedgerEntry struct {
	UserID      string
	Credits     int
	Action      model.Action
	Description string
	ResourceID  *string
	// Month selects the FeatureUsage row incremented for Action's counter.
	Month string
}

// TransferEntry moves credits between two users.
type TransferEntry struct {
	TransferID  string
	SenderID    string
	RecipientID string
	Credits     int

	SentDescription     string
	ReceivedDescription string
}

// CreditRepository owns every multi-table credit mutation. Each method
// runs in a single transaction.
type CreditRepository interface {
	// Consume adds to credits_used unconditionally, appends the ledger row
	// and bumps the monthly counter.
	Consume(ctx context.Context, entry LedgerEntry) error

	// Debit is Consume guarded by credits_total - credits_used >= credits.
	// Returns ErrInsufficientCredits when the guard fails.
	Debit(ctx context.Context, entry LedgerEntry) (*model.User, error)

	// Grant raises credits_total and appends a negative ledger row.
	Grant(ctx context.Context, entry LedgerEntry) (*model.User, error)

	// Transfer debits the sender's balance and grants it to the recipient.
	// Returns the updated sender.
	Transfer(ctx context.Context, entry TransferEntry) (*model.User, error)

	ListRecentUsage(ctx context.Context, userID string, limit int) ([]model.CreditUsage, error)
	ListUsage(ctx context.Context, userID string, offset, limit int) ([]model.CreditUsage, int64, error)
}

// FeatureUsageRepository reads monthly counters. Writes happen inside
// CreditRepository transactions.
type FeatureUsageRepository interface {
	FindByUserAndMonth(ctx context.Context, userID, month string) (*model.FeatureUsage, error)
}
