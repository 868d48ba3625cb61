package access

import "fmt"

// Decision is the policy outcome for one (tier, model) pair.
// The allow flags are reported independently of IsLocked so a client can
// explain why a model is locked.
type Decision struct {
	IsLocked       bool `json:"isLocked"`
	IsGuestAllowed bool `json:"isGuestAllowed"`
	IsDemoAllowed  bool `json:"isDemoAllowed"`
	IsDemoMode     bool `json:"isDemoMode"`
}

// Evaluate returns the lock decision for a model under the given tier.
//
// Free-tier accounts get the same class of restriction as guests but their own
// allow-list, so the two lists can diverge without code changes.
//
// Tiers are a closed set produced by Classify; an unknown tier panics.
func Evaluate(tier Tier, modelID string, reg *Registry) Decision {
	d := Decision{
		IsGuestAllowed: reg.IsAllowedForGuest(modelID),
		IsDemoAllowed:  reg.IsAllowedForDemo(modelID),
		IsDemoMode:     reg.IsDemoModeEnabled(),
	}

	switch tier {
	case TierGuest:
		d.IsLocked = !d.IsGuestAllowed
	case TierFree:
		d.IsLocked = !reg.IsAllowedForFreeTier(modelID)
	case TierDemoRestricted:
		d.IsLocked = !d.IsDemoAllowed
	case TierUnrestricted:
		d.IsLocked = false
	default:
		panic(fmt.Sprintf("access: unknown tier %q", string(tier)))
	}

	return d
}

// EvaluateAll evaluates every model id in order.
func EvaluateAll(tier Tier, modelIDs []string, reg *Registry) []Decision {
	out := make([]Decision, len(modelIDs))
	for i, id := range modelIDs {
		out[i] = Evaluate(tier, id, reg)
	}
	return out
}
