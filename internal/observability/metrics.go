package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TracerName is the instrumentation scope for spans emitted by this service.
const TracerName = "github.com/upb/llm-model-access"

// Metrics collects application metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	EnrichmentWaits *prometheus.CounterVec
	EnrichmentRuns  *prometheus.CounterVec
	ModelDecisions  *prometheus.CounterVec
	ListingFailures prometheus.Counter
	ListingLatency  prometheus.Histogram
	PolicyReloads   *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EnrichmentWaits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_access_enrichment_waits_total",
			Help: "Enrichment gate waits by outcome",
		}, []string{"outcome"}),
		EnrichmentRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_access_enrichment_runs_total",
			Help: "Background enrichment runs by result",
		}, []string{"result"}),
		ModelDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_access_decisions_total",
			Help: "Per-model policy decisions by tier and lock state",
		}, []string{"tier", "locked"}),
		ListingFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_access_listing_failures_total",
			Help: "Model listings that failed with a service error",
		}),
		ListingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "model_access_listing_duration_seconds",
			Help:    "End-to-end model listing latency including the enrichment wait",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 15},
		}),
		PolicyReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "model_access_policy_reloads_total",
			Help: "Policy snapshot reloads by result",
		}, []string{"result"}),
	}
}

// Registry exposes the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEnrichmentWait counts one gate wait. Nil-safe.
func (m *Metrics) RecordEnrichmentWait(outcome string) {
	if m == nil {
		return
	}
	m.EnrichmentWaits.WithLabelValues(outcome).Inc()
}

// RecordEnrichmentRun counts one worker run. Nil-safe.
func (m *Metrics) RecordEnrichmentRun(ok bool) {
	if m == nil {
		return
	}
	m.EnrichmentRuns.WithLabelValues(result(ok)).Inc()
}

// RecordDecision counts one per-model decision. Nil-safe.
func (m *Metrics) RecordDecision(tier string, locked bool) {
	if m == nil {
		return
	}
	m.ModelDecisions.WithLabelValues(tier, strconv.FormatBool(locked)).Inc()
}

// RecordListingFailure counts a failed listing. Nil-safe.
func (m *Metrics) RecordListingFailure() {
	if m == nil {
		return
	}
	m.ListingFailures.Inc()
}

// ObserveListing records listing latency in seconds. Nil-safe.
func (m *Metrics) ObserveListing(seconds float64) {
	if m == nil {
		return
	}
	m.ListingLatency.Observe(seconds)
}

// RecordPolicyReload counts one policy reload attempt. Nil-safe.
func (m *Metrics) RecordPolicyReload(ok bool) {
	if m == nil {
		return
	}
	m.PolicyReloads.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
