package access

import "sort"

// AllowList is an immutable set of model identifiers.
// The zero value allows nothing.
type AllowList struct {
	ids map[string]struct{}
}

// NewAllowList builds an allow-list. Empty identifiers are ignored.
func NewAllowList(ids ...string) AllowList {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return AllowList{ids: set}
}

// Contains reports whether id is in the list. Matching is exact.
func (l AllowList) Contains(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Len returns the number of identifiers in the list.
func (l AllowList) Len() int {
	return len(l.ids)
}

// IDs returns a sorted copy of the identifiers.
func (l AllowList) IDs() []string {
	out := make([]string, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DemoMode holds the demo toggle and which audiences it restricts.
// How logged-in and anonymous callers are split is a configuration decision.
type DemoMode struct {
	Enabled          bool
	RestrictLoggedIn bool
	// RestrictGuests is reported by status and IsDemoRestricted only. Guests
	// are classified as guest before any demo check, so it never changes
	// which models are locked.
	RestrictGuests bool
}

// RegistryConfig is the input to NewRegistry.
type RegistryConfig struct {
	GuestModels          []string
	DemoModels           []string
	FreeTierModels       []string
	DemoMode             DemoMode
	FreeTierMessageLimit int
}

// Registry is a read-only snapshot of the allow-lists and demo mode state.
// It is safe for concurrent use because nothing mutates it after construction.
type Registry struct {
	guest                AllowList
	demo                 AllowList
	freeTier             AllowList
	demoMode             DemoMode
	freeTierMessageLimit int
}

// NewRegistry builds a registry snapshot from configuration.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		guest:                NewAllowList(cfg.GuestModels...),
		demo:                 NewAllowList(cfg.DemoModels...),
		freeTier:             NewAllowList(cfg.FreeTierModels...),
		demoMode:             cfg.DemoMode,
		freeTierMessageLimit: cfg.FreeTierMessageLimit,
	}
}

// IsAllowedForGuest reports whether guests may use the model.
func (r *Registry) IsAllowedForGuest(id string) bool {
	return r != nil && r.guest.Contains(id)
}

// IsAllowedForDemo reports whether the model is usable while demo mode restricts the caller.
func (r *Registry) IsAllowedForDemo(id string) bool {
	return r != nil && r.demo.Contains(id)
}

// IsAllowedForFreeTier reports whether free-tier accounts may use the model.
func (r *Registry) IsAllowedForFreeTier(id string) bool {
	return r != nil && r.freeTier.Contains(id)
}

// IsDemoModeEnabled reports the process-wide demo toggle.
func (r *Registry) IsDemoModeEnabled() bool {
	return r != nil && r.demoMode.Enabled
}

// IsDemoRestricted reports whether demo mode restricts a caller.
func (r *Registry) IsDemoRestricted(isLoggedIn bool) bool {
	if !r.IsDemoModeEnabled() {
		return false
	}
	if isLoggedIn {
		return r.demoMode.RestrictLoggedIn
	}
	return r.demoMode.RestrictGuests
}

// DemoMode returns the demo mode settings.
func (r *Registry) DemoMode() DemoMode {
	if r == nil {
		return DemoMode{}
	}
	return r.demoMode
}

// FreeTierMessageLimit is carried for consumers outside the policy engine.
func (r *Registry) FreeTierMessageLimit() int {
	if r == nil {
		return 0
	}
	return r.freeTierMessageLimit
}

// GuestModels returns the guest allow-list.
func (r *Registry) GuestModels() AllowList { return r.guest }

// DemoModels returns the demo allow-list.
func (r *Registry) DemoModels() AllowList { return r.demo }

// FreeTierModels returns the free-tier allow-list.
func (r *Registry) FreeTierModels() AllowList { return r.freeTier }
