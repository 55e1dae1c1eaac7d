package model

import "strings"

// Plan is the internal subscription tier.
type Plan string

const (
	PlanFree     Plan = "FREE"
	PlanStandard Plan = "STANDARD"
	PlanPro      Plan = "PRO"
)

// Unlimited marks a quota without a cap.
const Unlimited = -1

// PlanConfig is the static allotment of a plan. A quota of zero or below
// is not enforced.
type PlanConfig struct {
	Credits     int
	DesignFiles int
	ScreenFlows int
}

// Config returns the plan's allotment. Unknown plans resolve to FREE.
func (p Plan) Config() PlanConfig {
	switch p {
	case PlanStandard:
		return PlanConfig{Credits: 420, DesignFiles: 5, ScreenFlows: 5}
	case PlanPro:
		return PlanConfig{Credits: 1200, DesignFiles: Unlimited, ScreenFlows: Unlimited}
	case PlanFree:
		return PlanConfig{Credits: 90}
	default:
		return PlanConfig{Credits: 90}
	}
}

// CreditsFor returns the credits granted for one billing period.
func (p Plan) CreditsFor(cycle BillingCycle) int {
	credits := p.Config().Credits
	if cycle == BillingCycleYearly {
		return credits * 12
	}
	return credits
}

// IsPaid reports whether the plan is a paid tier.
func (p Plan) IsPaid() bool {
	return p == PlanStandard || p == PlanPro
}

// ParsePlan maps a case-insensitive plan name.
func ParsePlan(name string) (Plan, bool) {
	switch Plan(strings.ToUpper(strings.TrimSpace(name))) {
	case PlanFree:
		return PlanFree, true
	case PlanStandard:
		return PlanStandard, true
	case PlanPro:
		return PlanPro, true
	}
	return "", false
}

// BillingCycle is how often a subscription renews.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
)

// ParseBillingCycle defaults to monthly for anything but "yearly".
func ParseBillingCycle(s string) BillingCycle {
	if strings.EqualFold(strings.TrimSpace(s), "yearly") {
		return BillingCycleYearly
	}
	return BillingCycleMonthly
}
