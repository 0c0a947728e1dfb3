package domain

import (
	"encoding/json"
	"time"
)

// Caller is the identity and plan a request is evaluated against.
type Caller struct {
	UserID string
	Email  string
	Role   string
	Plan   PlanID
}

// Authenticated reports whether the caller carries a user identity.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// Can reports whether the caller's plan satisfies required.
func (c Caller) Can(required PlanID) bool {
	return HasAccess(c.Plan, required)
}

// HasAccess reports whether userPlan ranks at or above requiredPlan.
// Unknown identifiers on either side deny access.
func HasAccess(userPlan, requiredPlan PlanID) bool {
	user, required := Rank(userPlan), Rank(requiredPlan)
	if user < 0 || required < 0 {
		return false
	}
	return user >= required
}

// Remaining is the outcome of a usage check: a non-negative count or unlimited.
type Remaining struct {
	Count     int
	Unlimited bool
}

// MarshalJSON renders unlimited as the string "unlimited".
func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(r.Count)
}

// RemainingUsage computes what is left of a plan's limit after currentUsage.
// Unknown plans or limit kinds yield zero.
func RemainingUsage(userPlan PlanID, kind LimitKind, currentUsage int) Remaining {
	var limits Limits
	found := false
	for _, p := range basePlans() {
		if p.ID == userPlan {
			limits, found = p.Limits, true
			break
		}
	}
	if !found {
		return Remaining{}
	}

	limit, ok := limits.Get(kind)
	switch {
	case !ok:
		return Remaining{}
	case limit == Unlimited:
		return Remaining{Unlimited: true}
	case currentUsage >= limit:
		return Remaining{}
	default:
		return Remaining{Count: limit - currentUsage}
	}
}

// IsSubscriptionActive reports whether periodEnd is set and in the future.
// Display only: the plan field remains the source of truth for gating.
func IsSubscriptionActive(periodEnd *time.Time) bool {
	return subscriptionActiveAt(periodEnd, time.Now())
}

func subscriptionActiveAt(periodEnd *time.Time, now time.Time) bool {
	if periodEnd == nil {
		return false
	}
	return periodEnd.After(now)
}
