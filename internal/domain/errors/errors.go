package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound indicates that the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrSubscriptionNotFound indicates that the specified subscription was not found
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNoActiveSubscription indicates that the user has no current subscription
	ErrNoActiveSubscription = errors.New("no active subscription found")

	// ErrUnknownPlan indicates that a plan name or product id has no mapping
	ErrUnknownPlan = errors.New("unknown plan mapping for provided planId/planName")

	// ErrUnknownCreditPack indicates an unsupported credit pack size
	ErrUnknownCreditPack = errors.New("unknown credit pack")

	// ErrInsufficientCredits indicates a conditional debit found too little balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrSelfTransfer indicates a transfer whose sender and recipient are the same
	ErrSelfTransfer = errors.New("cannot transfer credits to yourself")

	// ErrTransferRateLimited indicates the sender exhausted the hourly transfer budget
	ErrTransferRateLimited = errors.New("too many transfers, please try again later")

	// ErrInvalidSignature indicates a webhook whose signature did not verify
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrAlreadyGranted indicates a purchase whose payment was already credited
	ErrAlreadyGranted = errors.New("credits already granted for this payment")

	// ErrDeliveryInFlight indicates a webhook redelivery that arrived while an
	// earlier attempt is still processing it
	ErrDeliveryInFlight = errors.New("webhook delivery is already being processed")

	// ErrInvalidAmount indicates a non-positive or out of range credit amount
	ErrInvalidAmount = errors.New("invalid credit amount")
)

// InsufficientBalanceError reports the amounts behind a failed debit.
type InsufficientBalanceError struct {
	Requested int
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient credit balance: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientCredits
}

// NewInsufficientBalanceError creates a new InsufficientBalanceError
func NewInsufficientBalanceError(requested, available int) *InsufficientBalanceError {
	return &InsufficientBalanceError{
		Requested: requested,
		Available: available,
	}
}
