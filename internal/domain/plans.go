package domain

import "strings"

// PlanID identifies a subscription tier.
type PlanID string

const (
	PlanFree         PlanID = "FREE"
	PlanStarter      PlanID = "STARTER"
	PlanProfessional PlanID = "PROFESSIONAL"
	PlanEnterprise   PlanID = "ENTERPRISE"
)

// planOrder is the access-control ordering, lowest tier first.
var planOrder = []PlanID{PlanFree, PlanStarter, PlanProfessional, PlanEnterprise}

// Unlimited is the limit sentinel for "no cap".
const Unlimited = -1

// LimitKind names a metered entitlement.
type LimitKind string

const (
	LimitBuyerViews   LimitKind = "buyerViews"
	LimitContactViews LimitKind = "contactViews"
	LimitExports      LimitKind = "exports"
	LimitSearches     LimitKind = "searches"
)

// LimitKinds lists every metered entitlement in display order.
func LimitKinds() []LimitKind {
	return []LimitKind{LimitBuyerViews, LimitContactViews, LimitExports, LimitSearches}
}

// Limits is the per-plan entitlement record. A value of Unlimited means no cap.
type Limits struct {
	BuyerViews   int  `json:"buyerViews"`
	ContactViews int  `json:"contactViews"`
	Exports      int  `json:"exports"`
	Searches     int  `json:"searches"`
	TeamSeats    int  `json:"teamSeats,omitempty"`
	APIAccess    bool `json:"apiAccess,omitempty"`
}

// Get returns the limit for kind and whether kind is known.
func (l Limits) Get(kind LimitKind) (int, bool) {
	switch kind {
	case LimitBuyerViews:
		return l.BuyerViews, true
	case LimitContactViews:
		return l.ContactViews, true
	case LimitExports:
		return l.Exports, true
	case LimitSearches:
		return l.Searches, true
	default:
		return 0, false
	}
}

// Plan describes a subscription tier.
type Plan struct {
	ID          PlanID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceUSD    int      `json:"priceUsd"` // monthly, whole dollars
	PriceRef    string   `json:"-"`        // billing provider price id, empty for FREE
	Popular     bool     `json:"popular"`
	Features    []string `json:"features"`
	Limits      Limits   `json:"limits"`
}

// Purchasable reports whether a checkout can be started for this plan.
func (p Plan) Purchasable() bool {
	return p.PriceRef != ""
}

func basePlans() []Plan {
	return []Plan{
		{
			ID:          PlanFree,
			Name:        "Free",
			Description: "Get started with limited access",
			PriceUSD:    0,
			Features: []string{
				"10 buyer profiles/month",
				"Basic search filters",
				"Company information only",
				"Email support",
			},
			Limits: Limits{BuyerViews: 10, ContactViews: 0, Exports: 0, Searches: 20},
		},
		{
			ID:          PlanStarter,
			Name:        "Starter",
			Description: "For individual investors",
			PriceUSD:    97,
			Features: []string{
				"100 buyer profiles/month",
				"Basic contact info",
				"Market filters",
				"Email support",
				"10 exports/month",
			},
			Limits: Limits{BuyerViews: 100, ContactViews: 50, Exports: 10, Searches: 100},
		},
		{
			ID:          PlanProfessional,
			Name:        "Professional",
			Description: "For active dealmakers",
			PriceUSD:    297,
			Popular:     true,
			Features: []string{
				"Full database access",
				"Direct emails & phone numbers",
				"Advanced search & filters",
				"Unlimited exports",
				"Priority support",
				"Weekly data updates",
			},
			Limits: Limits{BuyerViews: Unlimited, ContactViews: Unlimited, Exports: Unlimited, Searches: Unlimited},
		},
		{
			ID:          PlanEnterprise,
			Name:        "Enterprise",
			Description: "For teams and institutions",
			PriceUSD:    997,
			Features: []string{
				"Everything in Professional",
				"API access",
				"Custom integrations",
				"Dedicated account manager",
				"5 team seats",
			},
			Limits: Limits{
				BuyerViews:   Unlimited,
				ContactViews: Unlimited,
				Exports:      Unlimited,
				Searches:     Unlimited,
				TeamSeats:    5,
				APIAccess:    true,
			},
		},
	}
}

// PriceRefs holds the billing provider price ids for the paid tiers.
type PriceRefs struct {
	Starter      string
	Professional string
	Enterprise   string
}

// Catalog is the immutable set of plans with their provider price ids attached.
type Catalog struct {
	plans []Plan
}

// NewCatalog builds the catalog, attaching provider price ids to the paid tiers.
func NewCatalog(refs PriceRefs) *Catalog {
	plans := basePlans()
	for i := range plans {
		switch plans[i].ID {
		case PlanStarter:
			plans[i].PriceRef = strings.TrimSpace(refs.Starter)
		case PlanProfessional:
			plans[i].PriceRef = strings.TrimSpace(refs.Professional)
		case PlanEnterprise:
			plans[i].PriceRef = strings.TrimSpace(refs.Enterprise)
		}
	}
	return &Catalog{plans: plans}
}

// Plans returns all plans in rank order.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Plan returns the plan for id.
func (c *Catalog) Plan(id PlanID) (Plan, bool) {
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanForPrice maps a provider price id back to a plan. Unknown or empty ids map to FREE.
func (c *Catalog) PlanForPrice(priceRef string) PlanID {
	if priceRef == "" {
		return PlanFree
	}
	for _, p := range c.plans {
		if p.PriceRef == priceRef {
			return p.ID
		}
	}
	return PlanFree
}

// Rank returns the plan's position in the access ordering, or -1 for unknown ids.
func Rank(id PlanID) int {
	for i, p := range planOrder {
		if p == id {
			return i
		}
	}
	return -1
}

// ParsePlanID normalises a stored or client-supplied plan string.
// Unknown values are returned as-is so that they rank as not-found.
func ParsePlanID(s string) PlanID {
	return PlanID(strings.ToUpper(strings.TrimSpace(s)))
}
