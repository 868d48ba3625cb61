package access

import "github.com/google/uuid"

// Tier is a caller's access class, computed fresh per request.
type Tier string

const (
	TierGuest          Tier = "guest"
	TierFree           Tier = "free"
	TierDemoRestricted Tier = "demoRestricted"
	TierUnrestricted   Tier = "unrestricted"
)

// FreePlan is the plan tier value that marks a free-tier account.
const FreePlan = "free"

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierGuest, TierFree, TierDemoRestricted, TierUnrestricted:
		return true
	default:
		return false
	}
}

// Session is the caller's authenticated session as seen by the policy engine.
// A nil Session, or one without a user ID, denotes a guest.
type Session struct {
	UserID   uuid.UUID
	Email    string
	PlanTier *string
}

// IsLoggedIn reports whether the session identifies a user.
func (s *Session) IsLoggedIn() bool {
	return s != nil && s.UserID != uuid.Nil
}

// IsFreePlan reports whether a plan tier denotes the free tier.
// An absent or empty plan tier counts as free.
func IsFreePlan(planTier *string) bool {
	return planTier == nil || *planTier == "" || *planTier == FreePlan
}

// Classify maps a session to its access tier. The order of the rules matters:
// guests first, then free-tier accounts, then demo restrictions for the
// remaining logged-in callers.
func Classify(session *Session, reg *Registry) Tier {
	if !session.IsLoggedIn() {
		return TierGuest
	}
	if IsFreePlan(session.PlanTier) {
		return TierFree
	}
	if reg.IsDemoRestricted(true) {
		return TierDemoRestricted
	}
	return TierUnrestricted
}
