package runtimeconfig

import (
	"sync"
	"sync/atomic"

	"github.com/upb/llm-model-access/internal/access"
	"github.com/upb/llm-model-access/internal/observability"
	"go.uber.org/zap"
)

// Store holds the current access policy snapshot.
type Store struct {
	path     string
	baseline access.RegistryConfig
	current  atomic.Pointer[access.Registry]
	mu       sync.Mutex // serializes Reload
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewStore builds the initial snapshot from baseline and the policy file at
// path. A policy file that exists but is invalid fails startup.
func NewStore(path string, baseline access.RegistryConfig, logger *zap.Logger, metrics *observability.Metrics) (*Store, error) {
	s := &Store{
		path:     path,
		baseline: baseline,
		logger:   logger,
		metrics:  metrics,
	}

	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(access.NewRegistry(doc.Apply(baseline)))

	if doc != nil {
		logger.Info("access policy loaded from file", zap.String("path", path))
	}
	return s, nil
}

// Snapshot returns the current registry. The result never changes; callers
// evaluating a whole request should take one snapshot and reuse it.
func (s *Store) Snapshot() *access.Registry {
	return s.current.Load()
}

// Path returns the watched policy file path, possibly empty.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the policy file and swaps the snapshot.
// On error the previous snapshot stays active.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := LoadFile(s.path)
	if err != nil {
		s.metrics.RecordPolicyReload(false)
		s.logger.Warn("access policy reload failed, keeping previous policy",
			zap.String("path", s.path),
			zap.Error(err))
		return err
	}

	reg := access.NewRegistry(doc.Apply(s.baseline))
	s.current.Store(reg)
	s.metrics.RecordPolicyReload(true)

	s.logger.Info("access policy reloaded",
		zap.String("path", s.path),
		zap.Bool("from_file", doc != nil),
		zap.Bool("demo_mode", reg.IsDemoModeEnabled()),
		zap.Int("guest_models", reg.GuestModels().Len()),
		zap.Int("demo_models", reg.DemoModels().Len()),
		zap.Int("free_tier_models", reg.FreeTierModels().Len()))
	return nil
}
