package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"uppercase level", "WARN", "json", false},
		{"unknown format falls back to json", "error", "xml", false},
		{"invalid level", "loud", "json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			_ = logger.Sync()
		})
	}
}

func TestMetrics_Recorders(t *testing.T) {
	m := NewMetrics()

	m.RecordEnrichmentWait("completed")
	m.RecordEnrichmentWait("timed_out")
	m.RecordEnrichmentWait("timed_out")
	m.RecordEnrichmentRun(true)
	m.RecordEnrichmentRun(false)
	m.RecordDecision("guest", true)
	m.RecordDecision("guest", false)
	m.RecordListingFailure()
	m.ObserveListing(0.02)
	m.RecordPolicyReload(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentWaits.WithLabelValues("completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EnrichmentWaits.WithLabelValues("timed_out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentRuns.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModelDecisions.WithLabelValues("guest", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PolicyReloads.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ListingLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordEnrichmentWait("completed")
		m.RecordEnrichmentRun(true)
		m.RecordDecision("free", false)
		m.RecordListingFailure()
		m.ObserveListing(1)
		m.RecordPolicyReload(true)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordPolicyReload(true)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `model_access_policy_reloads_total{result="success"} 1`)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Each instance owns its registry, so building two never collides.
	a, b := NewMetrics(), NewMetrics()
	a.RecordListingFailure()

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ListingFailures))
}
