package usecase

import (
	"github.com/wekeepgrowing/uxpilot-billing/internal/config"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/model"
)

// PlanProduct is what a subscription product id grants.
type PlanProduct struct {
	ProductID    string
	Plan         model.Plan
	BillingCycle model.BillingCycle
	Credits      int
}

// Catalog maps provider product ids to plans and credit packs.
// Products with an empty id are not registered.
type Catalog struct {
	plans       map[string]PlanProduct
	packs       map[string]int
	packProduct map[int]string
}

// NewCatalog builds the product catalog from configuration.
func NewCatalog(cfg config.ProductsConfig) *Catalog {
	c := &Catalog{
		plans:       make(map[string]PlanProduct),
		packs:       make(map[string]int),
		packProduct: make(map[int]string),
	}

	c.addPlan(cfg.StandardMonthly, model.PlanStandard, model.BillingCycleMonthly)
	c.addPlan(cfg.StandardYearly, model.PlanStandard, model.BillingCycleYearly)
	c.addPlan(cfg.ProMonthly, model.PlanPro, model.BillingCycleMonthly)
	c.addPlan(cfg.ProYearly, model.PlanPro, model.BillingCycleYearly)

	c.addPack(cfg.CreditPack360, 360)
	c.addPack(cfg.CreditPack720, 720)
	c.addPack(cfg.CreditPack1440, 1440)
	c.addPack(cfg.CreditPack2880, 2880)

	return c
}

func (c *Catalog) addPlan(productID string, plan model.Plan, cycle model.BillingCycle) {
	if productID == "" {
		return
	}
	c.plans[productID] = PlanProduct{
		ProductID:    productID,
		Plan:         plan,
		BillingCycle: cycle,
		Credits:      plan.CreditsFor(cycle),
	}
}

func (c *Catalog) addPack(productID string, credits int) {
	if productID == "" {
		return
	}
	c.packs[productID] = credits
	c.packProduct[credits] = productID
}

// LookupPlan resolves a subscription product id.
func (c *Catalog) LookupPlan(productID string) (PlanProduct, bool) {
	p, ok := c.plans[productID]
	return p, ok
}

// PlanProductID returns the product id configured for plan and cycle.
func (c *Catalog) PlanProductID(plan model.Plan, cycle model.BillingCycle) (string, bool) {
	for id, p := range c.plans {
		if p.Plan == plan && p.BillingCycle == cycle {
			return id, true
		}
	}
	return "", false
}

// PackCredits resolves a credit pack product id to its credit amount.
func (c *Catalog) PackCredits(productID string) (int, bool) {
	n, ok := c.packs[productID]
	return n, ok
}

// PackProductID returns the product id of the pack with the given size.
func (c *Catalog) PackProductID(credits int) (string, bool) {
	id, ok := c.packProduct[credits]
	return id, ok
}
