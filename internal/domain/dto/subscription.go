package dto

// CaptureSubscriptionRequest records a subscription after a completed checkout.
type CaptureSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"required"`
	PlanID         string `json:"planId" validate:"required"`
	PlanName       string `json:"planName"`
	BillingCycle   string `json:"billingCycle" validate:"omitempty,oneof=monthly yearly MONTHLY YEARLY"`
}

type SubscriptionCheckoutRequest struct {
	Plan         string `json:"plan" validate:"required,oneof=standard pro STANDARD PRO"`
	BillingCycle string `json:"billingCycle" validate:"omitempty,oneof=monthly yearly MONTHLY YEARLY"`
}

type CreditPackCheckoutRequest struct {
	Credits int `json:"credits" validate:"required,oneof=360 720 1440 2880"`
}

type CheckoutResponse struct {
	CheckoutID  string `json:"checkoutId"`
	PaymentLink string `json:"paymentLink"`
}
