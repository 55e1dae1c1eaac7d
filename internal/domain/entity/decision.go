package entity

// Denial reasons shown to end users.
const (
	ReasonInvalidParameters   = "Invalid parameters"
	ReasonRateLimited         = "Rate limit exceeded. Please try again later."
	ReasonUserNotFound        = "User not found"
	ReasonInsufficientCredits = "Insufficient credits"
	ReasonInvalidAccountState = "Invalid account state. Please contact support."
	ReasonDesignFileLimit     = "Design file limit reached for current plan"
	ReasonScreenFlowLimit     = "Screen flow limit reached for current plan"
	ReasonExportRequiresPaid  = "Export features require a paid plan"
)

// Decision is the outcome of an entitlement check. A denial is not an error.
type Decision struct {
	Allowed          bool   `json:"allowed"`
	Reason           string `json:"reason,omitempty"`
	CreditsRequired  *int   `json:"creditsRequired,omitempty"`
	CreditsRemaining *int   `json:"creditsRemaining,omitempty"`
}

// Allow returns an allowed decision with the remaining balance.
func Allow(remaining int) *Decision {
	return &Decision{Allowed: true, CreditsRemaining: &remaining}
}

// Deny returns a denied decision with the given reason.
func Deny(reason string) *Decision {
	return &Decision{Reason: reason}
}

// DenyInsufficient also reports the amounts for client display.
func DenyInsufficient(required, remaining int) *Decision {
	return &Decision{
		Reason:           ReasonInsufficientCredits,
		CreditsRequired:  &required,
		CreditsRemaining: &remaining,
	}
}
