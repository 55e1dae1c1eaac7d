package entity

import (
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
)

// Balance summarizes a user's credits for display.
type Balance struct {
	Total        int                 `json:"total"`
	Used         int                 `json:"used"`
	Remaining    int                 `json:"remaining"`
	Percentage   float64             `json:"percentage"`
	Plan         model.Plan          `json:"plan"`
	RecentUsage  []model.CreditUsage `json:"recentUsage"`
	FeatureUsage *model.FeatureUsage `json:"featureUsage"`
}

// NewBalance computes the derived fields from the user row.
func NewBalance(user *model.User, recent []model.CreditUsage, usage *model.FeatureUsage) *Balance {
	var percentage float64
	if user.CreditsTotal > 0 {
		percentage = float64(user.CreditsUsed) / float64(user.CreditsTotal) * 100
	}
	if recent == nil {
		recent = []model.CreditUsage{}
	}
	return &Balance{
		Total:        user.CreditsTotal,
		Used:         user.CreditsUsed,
		Remaining:    user.Remaining(),
		Percentage:   percentage,
		Plan:         user.CurrentPlan,
		RecentUsage:  recent,
		FeatureUsage: usage,
	}
}

// TransferResult is returned after a successful credit transfer.
type TransferResult struct {
	TransferID      string    `json:"transferId"`
	Credits         int       `json:"credits"`
	RecipientEmail  string    `json:"recipientEmail"`
	SenderRemaining int       `json:"senderRemaining"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SubscriptionStatus is the account summary shown in settings.
type SubscriptionStatus struct {
	Plan             model.Plan          `json:"plan"`
	CreditsTotal     int                 `json:"creditsTotal"`
	CreditsUsed      int                 `json:"creditsUsed"`
	CreditsRemaining int                 `json:"creditsRemaining"`
	HasSubscription  bool                `json:"hasSubscription"`
	Subscription     *model.Subscription `json:"subscription,omitempty"`
}

// SyncResult reports what a reconciliation pass changed.
type SyncResult struct {
	SubscriptionID string                   `json:"subscriptionId"`
	Previous       model.SubscriptionStatus `json:"previousStatus"`
	Current        model.SubscriptionStatus `json:"currentStatus"`
	Changed        bool                     `json:"changed"`
}
