package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func testRegistry(demo DemoMode) *Registry {
	return NewRegistry(RegistryConfig{
		GuestModels:    []string{"openai/gpt-oss-20b:free", "google/gemma-3-27b-it:free"},
		DemoModels:     []string{"openai/gpt-oss-20b:free", "anthropic/claude-haiku"},
		FreeTierModels: []string{"openai/gpt-oss-20b:free", "z-ai/glm-4.5-air:free"},
		DemoMode:       demo,
	})
}

func TestClassify(t *testing.T) {
	userID := uuid.New()
	restricting := testRegistry(DemoMode{Enabled: true, RestrictLoggedIn: true})
	open := testRegistry(DemoMode{})

	tests := []struct {
		name    string
		session *Session
		reg     *Registry
		want    Tier
	}{
		{"no session", nil, open, TierGuest},
		{"session without user id", &Session{Email: "a@example.com"}, open, TierGuest},
		{"nil plan tier", &Session{UserID: userID}, open, TierFree},
		{"empty plan tier", &Session{UserID: userID, PlanTier: strPtr("")}, open, TierFree},
		{"free plan tier", &Session{UserID: userID, PlanTier: strPtr("free")}, open, TierFree},
		{"free plan wins over demo", &Session{UserID: userID, PlanTier: strPtr("free")}, restricting, TierFree},
		{"paid plan in demo mode", &Session{UserID: userID, PlanTier: strPtr("pro")}, restricting, TierDemoRestricted},
		{"paid plan normal mode", &Session{UserID: userID, PlanTier: strPtr("pro")}, open, TierUnrestricted},
		{
			"demo enabled but logged-in users not restricted",
			&Session{UserID: userID, PlanTier: strPtr("pro")},
			testRegistry(DemoMode{Enabled: true, RestrictGuests: true}),
			TierUnrestricted,
		},
		{"guest unaffected when guests not demo restricted", nil, testRegistry(DemoMode{Enabled: true, RestrictLoggedIn: true}), TierGuest},
		{"guest unaffected when guests demo restricted", nil, testRegistry(DemoMode{Enabled: true, RestrictGuests: true}), TierGuest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.session, tt.reg))
		})
	}
}

func TestTierValid(t *testing.T) {
	for _, tier := range []Tier{TierGuest, TierFree, TierDemoRestricted, TierUnrestricted} {
		assert.True(t, tier.Valid(), tier)
	}
	assert.False(t, Tier("admin").Valid())
}

func TestRegistry(t *testing.T) {
	t.Run("membership is exact", func(t *testing.T) {
		reg := testRegistry(DemoMode{})
		assert.True(t, reg.IsAllowedForGuest("openai/gpt-oss-20b:free"))
		assert.False(t, reg.IsAllowedForGuest("openai/gpt-oss-20b"))
		assert.True(t, reg.IsAllowedForFreeTier("z-ai/glm-4.5-air:free"))
		assert.False(t, reg.IsAllowedForGuest("z-ai/glm-4.5-air:free"))
		assert.True(t, reg.IsAllowedForDemo("anthropic/claude-haiku"))
	})

	t.Run("empty lists allow nothing", func(t *testing.T) {
		reg := NewRegistry(RegistryConfig{})
		assert.False(t, reg.IsAllowedForGuest("openai/gpt-oss-20b:free"))
		assert.False(t, reg.IsAllowedForDemo("openai/gpt-oss-20b:free"))
		assert.False(t, reg.IsAllowedForFreeTier("openai/gpt-oss-20b:free"))
	})

	t.Run("nil registry allows nothing", func(t *testing.T) {
		var reg *Registry
		assert.False(t, reg.IsAllowedForGuest("x"))
		assert.False(t, reg.IsDemoModeEnabled())
		assert.False(t, reg.IsDemoRestricted(true))
	})

	t.Run("demo restriction per audience", func(t *testing.T) {
		reg := testRegistry(DemoMode{Enabled: true, RestrictLoggedIn: true})
		assert.True(t, reg.IsDemoRestricted(true))
		assert.False(t, reg.IsDemoRestricted(false))

		off := testRegistry(DemoMode{Enabled: false, RestrictLoggedIn: true, RestrictGuests: true})
		assert.False(t, off.IsDemoRestricted(true))
		assert.False(t, off.IsDemoRestricted(false))
	})

	t.Run("ids are sorted and deduplicated", func(t *testing.T) {
		list := NewAllowList("b", "a", "b", "")
		assert.Equal(t, []string{"a", "b"}, list.IDs())
		assert.Equal(t, 2, list.Len())
	})
}

func TestEvaluate(t *testing.T) {
	reg := testRegistry(DemoMode{Enabled: true, RestrictLoggedIn: true})

	t.Run("guest locked outside guest list", func(t *testing.T) {
		assert.False(t, Evaluate(TierGuest, "openai/gpt-oss-20b:free", reg).IsLocked)
		assert.True(t, Evaluate(TierGuest, "z-ai/glm-4.5-air:free", reg).IsLocked)
	})

	t.Run("free tier uses its own list", func(t *testing.T) {
		assert.False(t, Evaluate(TierFree, "z-ai/glm-4.5-air:free", reg).IsLocked)
		assert.True(t, Evaluate(TierFree, "google/gemma-3-27b-it:free", reg).IsLocked)
		assert.True(t, Evaluate(TierFree, "some/paid-model", reg).IsLocked)
	})

	t.Run("demo restricted uses demo list", func(t *testing.T) {
		assert.False(t, Evaluate(TierDemoRestricted, "anthropic/claude-haiku", reg).IsLocked)
		assert.True(t, Evaluate(TierDemoRestricted, "some/paid-model", reg).IsLocked)
	})

	t.Run("unrestricted never locks", func(t *testing.T) {
		for _, id := range []string{"openai/gpt-oss-20b:free", "some/paid-model", "", "anything"} {
			assert.False(t, Evaluate(TierUnrestricted, id, reg).IsLocked, id)
		}
	})

	t.Run("pass-through flags are independent of the lock", func(t *testing.T) {
		d := Evaluate(TierUnrestricted, "anthropic/claude-haiku", reg)
		assert.Equal(t, Decision{
			IsLocked:       false,
			IsGuestAllowed: false,
			IsDemoAllowed:  true,
			IsDemoMode:     true,
		}, d)
	})

	t.Run("deterministic", func(t *testing.T) {
		for _, tier := range []Tier{TierGuest, TierFree, TierDemoRestricted, TierUnrestricted} {
			first := Evaluate(tier, "google/gemma-3-27b-it:free", reg)
			for i := 0; i < 10; i++ {
				assert.Equal(t, first, Evaluate(tier, "google/gemma-3-27b-it:free", reg))
			}
		}
	})

	t.Run("unknown tier panics", func(t *testing.T) {
		assert.Panics(t, func() { Evaluate(Tier("admin"), "x", reg) })
	})
}

func TestEvaluate_DisjointGuestAndFreeLists(t *testing.T) {
	reg := NewRegistry(RegistryConfig{
		GuestModels:    []string{"a", "b"},
		FreeTierModels: []string{"c", "d"},
	})
	ids := []string{"a", "b", "c", "d", "e"}

	guest := EvaluateAll(TierGuest, ids, reg)
	free := EvaluateAll(TierFree, ids, reg)

	for i, id := range ids {
		listsDiffer := reg.IsAllowedForGuest(id) != reg.IsAllowedForFreeTier(id)
		assert.Equal(t, listsDiffer, guest[i].IsLocked != free[i].IsLocked, id)
	}
}

func TestScenarios(t *testing.T) {
	reg := NewRegistry(RegistryConfig{
		GuestModels:    []string{"openai/gpt-oss-20b:free"},
		FreeTierModels: []string{"openai/gpt-oss-20b:free"},
	})

	t.Run("guest on guest-allowed model", func(t *testing.T) {
		tier := Classify(nil, reg)
		assert.False(t, Evaluate(tier, "openai/gpt-oss-20b:free", reg).IsLocked)
	})

	t.Run("pro user on unrestricted model", func(t *testing.T) {
		tier := Classify(&Session{UserID: uuid.New(), PlanTier: strPtr("pro")}, reg)
		assert.False(t, Evaluate(tier, "openai/gpt-oss-20b:free", reg).IsLocked)
	})

	t.Run("null plan tier on paid model", func(t *testing.T) {
		tier := Classify(&Session{UserID: uuid.New()}, reg)
		assert.True(t, Evaluate(tier, "some/paid-model", reg).IsLocked)
	})
}
