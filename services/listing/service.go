// Package listing assembles the model list a caller sees, annotated with
// per-model access decisions.
package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/llm-model-access/internal/access"
	"github.com/upb/llm-model-access/internal/catalog"
	"github.com/upb/llm-model-access/internal/enrichment"
	"github.com/upb/llm-model-access/internal/observability"
	"github.com/upb/llm-model-access/services"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DefaultWaitTimeout bounds how long a listing waits for enrichment.
const DefaultWaitTimeout = 10 * time.Second

var tracer = otel.Tracer(observability.TracerName + "/services/listing")

// AnnotatedModel is a catalog model with its access decision for the caller.
type AnnotatedModel struct {
	catalog.Model
	access.Decision
}

// ReadinessGate reports whether enrichment has finished.
type ReadinessGate interface {
	Await(ctx context.Context, timeout time.Duration) enrichment.Outcome
}

// SnapshotProvider returns the current access policy.
type SnapshotProvider interface {
	Snapshot() *access.Registry
}

// Service lists models for a session.
type Service struct {
	gate        ReadinessGate
	source      catalog.Source
	policies    SnapshotProvider
	waitTimeout time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewService creates a new listing service. A non-positive waitTimeout
// uses DefaultWaitTimeout.
func NewService(
	gate ReadinessGate,
	source catalog.Source,
	policies SnapshotProvider,
	waitTimeout time.Duration,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Service {
	if waitTimeout <= 0 {
		waitTimeout = DefaultWaitTimeout
	}
	return &Service{
		gate:        gate,
		source:      source,
		policies:    policies,
		waitTimeout: waitTimeout,
		logger:      logger,
		metrics:     metrics,
	}
}

// List returns every catalog model annotated for session. A nil session is
// a guest. The enrichment wait never fails the call; a catalog failure
// returns services.ErrModelsUnavailable and no partial list.
func (s *Service) List(ctx context.Context, session *access.Session) (models []AnnotatedModel, err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "listing.List")
	defer func() {
		s.metrics.ObserveListing(time.Since(start).Seconds())
		if err != nil {
			s.metrics.RecordListingFailure()
			span.RecordError(err)
			span.SetStatus(codes.Error, services.ModelsUnavailableMessage)
		}
		span.End()
	}()

	outcome := s.gate.Await(ctx, s.waitTimeout)
	s.metrics.RecordEnrichmentWait(outcome.String())
	span.SetAttributes(attribute.String("enrichment.outcome", outcome.String()))

	switch outcome {
	case enrichment.OutcomeCompleted:
		s.logger.Info("model enrichment completed before listing")
	default:
		s.logger.Warn("listing models without enrichment",
			zap.String("outcome", outcome.String()),
			zap.Duration("wait_timeout", s.waitTimeout))
	}

	models, tier, err := s.annotate(ctx, session)
	if err != nil {
		s.logger.Error("failed to list models", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("access.tier", string(tier)),
		attribute.Int("models.count", len(models)),
	)
	return models, nil
}

// annotate fetches the catalog and applies one policy snapshot to every
// model. Any panic is reported as the unavailable error.
func (s *Service) annotate(ctx context.Context, session *access.Session) (out []AnnotatedModel, tier access.Tier, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = services.WrapUnavailable(fmt.Errorf("panic while listing models: %v", r))
		}
	}()

	models, err := s.source.ListModels(ctx)
	if err != nil {
		return nil, "", services.WrapUnavailable(err)
	}

	reg := s.policies.Snapshot()
	tier = access.Classify(session, reg)
	isLoggedIn := session.IsLoggedIn()

	s.logger.Debug("resolved access tier",
		zap.String("tier", string(tier)),
		zap.Bool("has_session", session != nil),
		zap.Bool("logged_in", isLoggedIn),
		zap.Bool("free_plan", isLoggedIn && access.IsFreePlan(session.PlanTier)),
		zap.Bool("demo_mode", reg.IsDemoModeEnabled()),
		zap.Bool("demo_restricted", reg.IsDemoRestricted(isLoggedIn)),
		zap.Int("models", len(models)))

	out = make([]AnnotatedModel, 0, len(models))
	var locked int
	for _, m := range models {
		decision := access.Evaluate(tier, m.Name, reg)
		s.metrics.RecordDecision(string(tier), decision.IsLocked)
		if decision.IsLocked {
			locked++
		}
		out = append(out, AnnotatedModel{Model: m, Decision: decision})
	}

	s.logger.Debug("annotated models",
		zap.String("tier", string(tier)),
		zap.Int("locked", locked),
		zap.Int("unlocked", len(out)-locked))
	return out, tier, nil
}
