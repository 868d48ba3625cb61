package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/upb/llm-model-access/app"
	"github.com/upb/llm-model-access/config"
	"github.com/upb/llm-model-access/internal/access"
	"github.com/upb/llm-model-access/internal/catalog"
	"github.com/upb/llm-model-access/internal/enrichment"
	"github.com/upb/llm-model-access/internal/observability"
	"github.com/upb/llm-model-access/internal/runtimeconfig"
	"github.com/upb/llm-model-access/services/listing"
	"go.uber.org/zap"
)

var testModels = []catalog.Model{
	{Name: "free/a", DisplayName: "A", Provider: "openrouter"},
	{Name: "free/b", DisplayName: "B", Provider: "openrouter"},
	{Name: "paid/c", DisplayName: "C", Provider: "openrouter"},
}

var testPolicy = access.RegistryConfig{
	GuestModels:          []string{"free/a"},
	DemoModels:           []string{"free/b"},
	FreeTierModels:       []string{"free/a", "free/b"},
	FreeTierMessageLimit: 6,
}

type failingSource struct{ err error }

func (s failingSource) ListModels(context.Context) ([]catalog.Model, error) {
	return nil, s.err
}

// newTestDeps wires just enough of the application for handler tests.
// A nil source lists the test catalog.
func newTestDeps(t *testing.T, policy access.RegistryConfig, source catalog.Source) *app.Dependencies {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	registry := catalog.NewRegistry()
	require.NoError(t, registry.Register(testModels...))
	if source == nil {
		source = registry
	}

	store, err := runtimeconfig.NewStore("", policy, logger, metrics)
	require.NoError(t, err)

	gate := enrichment.NewGate()

	return &app.Dependencies{
		Config:   &config.Config{Environment: "test"},
		Logger:   logger,
		Metrics:  metrics,
		Catalog:  registry,
		Gate:     gate,
		Policies: store,
		Listing:  listing.NewService(gate, source, store, 10*time.Millisecond, logger, metrics),
	}
}
