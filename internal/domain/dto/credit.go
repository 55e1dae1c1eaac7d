package dto

import (
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/entity"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
)

// CheckEntitlementRequest asks whether an action may proceed.
// CreditsRequired defaults to 6 when omitted.
type CheckEntitlementRequest struct {
	Action          string `json:"action" validate:"required"`
	CreditsRequired *int   `json:"creditsRequired" validate:"omitempty,min=0"`
}

// ConsumeCreditsRequest debits credits after a metered action succeeded.
type ConsumeCreditsRequest struct {
	Action     string  `json:"action" validate:"required"`
	Credits    int     `json:"credits" validate:"required,min=1"`
	ResourceID *string `json:"resourceId" validate:"omitempty,max=100"`
	Strict     bool    `json:"strict"`
}

type PurchaseCreditsRequest struct {
	Credits int `json:"credits" validate:"required,min=50,max=10000"`
}

type TransferCreditsRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
	Credits        int    `json:"credits" validate:"required,min=10,max=1000"`
	Message        string `json:"message" validate:"max=200"`
}

// CreditUsageDTO is a ledger row in API responses
type CreditUsageDTO struct {
	ID          string    `json:"id"`
	Credits     int       `json:"credits"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	ResourceID  *string   `json:"resourceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UsageListResponse is the paginated ledger
type UsageListResponse struct {
	Data       []CreditUsageDTO      `json:"data"`
	Pagination entity.PaginationMeta `json:"pagination"`
}

// ToCreditUsageDTOs converts ledger rows for the API.
func ToCreditUsageDTOs(rows []model.CreditUsage) []CreditUsageDTO {
	out := make([]CreditUsageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, CreditUsageDTO{
			ID:          row.ID,
			Credits:     row.CreditsUsed,
			Action:      string(row.Action),
			Description: row.Description,
			ResourceID:  row.ResourceID,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out
}
