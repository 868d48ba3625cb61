// Package enrichment coordinates requests with the background process that
// completes model metadata after startup.
//
// Enrichment is best effort. A request may wait for it, but only for a bounded
// time; afterwards the request proceeds with whatever data is available.
package enrichment

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is the result of waiting on a Gate.
type Outcome int

const (
	// OutcomeNeverStarted means no enrichment run was ever started, so there is nothing to wait for.
	OutcomeNeverStarted Outcome = iota
	// OutcomeCompleted means enrichment finished before or during the wait.
	OutcomeCompleted
	// OutcomeTimedOut means the wait bound elapsed while enrichment was still pending.
	OutcomeTimedOut
	// OutcomeFailed means the enrichment run ended without completing. Basic data is all there will be.
	OutcomeFailed
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeNeverStarted:
		return "never_started"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gate is a durable, broadcast completion signal.
//
// State moves pending -> completed or pending -> failed exactly once. Either
// terminal state releases every current waiter and answers every later one
// without blocking. A waiter that times out does not change the gate's state.
type Gate struct {
	started atomic.Bool
	failed  atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// NewGate returns a pending gate.
func NewGate() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Start records that an enrichment run is expected. Until then Await does not wait.
func (g *Gate) Start() {
	g.started.Store(true)
}

// Complete signals success. Safe to call more than once and from any goroutine;
// only the first Complete or Fail takes effect.
func (g *Gate) Complete() {
	g.finish(false)
}

// Fail signals that the run ended without completing.
func (g *Gate) Fail() {
	g.finish(true)
}

func (g *Gate) finish(failed bool) {
	g.once.Do(func() {
		g.started.Store(true)
		g.failed.Store(failed)
		close(g.done)
	})
}

// Started reports whether an enrichment run is expected or has begun.
func (g *Gate) Started() bool {
	return g.started.Load()
}

// Completed reports whether the run finished successfully.
func (g *Gate) Completed() bool {
	return g.finished() && !g.failed.Load()
}

// Failed reports whether the run ended without completing.
func (g *Gate) Failed() bool {
	return g.finished() && g.failed.Load()
}

func (g *Gate) finished() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// result returns the terminal outcome, if any.
func (g *Gate) result() (Outcome, bool) {
	if !g.finished() {
		return 0, false
	}
	if g.failed.Load() {
		return OutcomeFailed, true
	}
	return OutcomeCompleted, true
}

// Await blocks until the run finishes, the timeout elapses or ctx is
// cancelled. Cancellation counts as the wait bound elapsing.
// A timeout <= 0 never blocks.
func (g *Gate) Await(ctx context.Context, timeout time.Duration) Outcome {
	if outcome, ok := g.result(); ok {
		return outcome
	}
	if !g.Started() {
		return OutcomeNeverStarted
	}
	if timeout <= 0 {
		return OutcomeTimedOut
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-g.done:
	case <-timer.C:
	case <-ctx.Done():
	}

	// A run finishing as the timer fires is reported as finished.
	if outcome, ok := g.result(); ok {
		return outcome
	}
	return OutcomeTimedOut
}

// AwaitReady waits up to timeout and reports whether enrichment completed.
// A failed run reports false without waiting.
func (g *Gate) AwaitReady(timeout time.Duration) bool {
	return g.Await(context.Background(), timeout) == OutcomeCompleted
}
