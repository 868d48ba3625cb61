package enrichment

import (
	"context"
	"time"

	"github.com/upb/llm-model-access/internal/observability"
	"go.uber.org/zap"
)

// Enricher completes model metadata. Implementations must honour ctx.
type Enricher interface {
	Enrich(ctx context.Context) error
}

// EnricherFunc adapts a function to Enricher.
type EnricherFunc func(ctx context.Context) error

// Enrich calls f(ctx).
func (f EnricherFunc) Enrich(ctx context.Context) error {
	return f(ctx)
}

// Worker runs an Enricher once and settles the gate with the result.
type Worker struct {
	gate     *Gate
	enricher Enricher
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewWorker creates a worker and marks the gate started, so requests served
// before Run is scheduled still wait for it. A zero timeout leaves the run
// bounded only by the caller's context.
func NewWorker(gate *Gate, enricher Enricher, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Worker {
	gate.Start()
	return &Worker{
		gate:     gate,
		enricher: enricher,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run performs one enrichment pass. A failed pass is logged and fails the
// gate, releasing waiters with basic model data. Run only returns an error if
// ctx was cancelled before the pass started; the gate is failed then too.
func (w *Worker) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		w.gate.Fail()
		return err
	}

	start := time.Now()
	w.logger.Info("model enrichment started")

	runCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.enricher.Enrich(runCtx); err != nil {
		w.gate.Fail()
		w.metrics.RecordEnrichmentRun(false)
		w.logger.Warn("model enrichment failed, serving basic model data",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil
	}

	w.gate.Complete()
	w.metrics.RecordEnrichmentRun(true)
	w.logger.Info("model enrichment completed",
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
