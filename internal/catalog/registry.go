// Package catalog holds the set of models the service can list.
//
// The registry is seeded at startup and later enriched in place with
// provider metadata. The policy engine only reads model names from it.
package catalog

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrModelAlreadyRegistered is returned when registering a duplicate model name
	ErrModelAlreadyRegistered = errors.New("model already registered")

	// ErrEmptyModelName is returned when a model has no name
	ErrEmptyModelName = errors.New("model name cannot be empty")
)

// Model is a catalog entry. Name is the globally unique model identifier.
type Model struct {
	Name          string        `json:"name" yaml:"name" validate:"modelid"`
	DisplayName   string        `json:"displayName,omitempty" yaml:"display_name"`
	Provider      string        `json:"provider,omitempty" yaml:"provider"`
	Description   string        `json:"description,omitempty" yaml:"description"`
	ContextLength int           `json:"contextLength,omitempty" yaml:"context_length" validate:"gte=0"`
	Architecture  *Architecture `json:"architecture,omitempty" yaml:"-"`
}

// Architecture is provider-supplied metadata attached by enrichment.
type Architecture struct {
	InputModalities  []string `json:"inputModalities,omitempty"`
	OutputModalities []string `json:"outputModalities,omitempty"`
	Tokenizer        string   `json:"tokenizer,omitempty"`
}

// clone returns a deep copy so callers never share state with the registry.
func (m *Model) clone() Model {
	out := *m
	if m.Architecture != nil {
		arch := *m.Architecture
		arch.InputModalities = append([]string(nil), m.Architecture.InputModalities...)
		arch.OutputModalities = append([]string(nil), m.Architecture.OutputModalities...)
		out.Architecture = &arch
	}
	return out
}

// Source provides the current full model set.
type Source interface {
	ListModels(ctx context.Context) ([]Model, error)
}

// Registry is a thread-safe in-memory model catalog that keeps registration order.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	order  []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]*Model),
	}
}

// Register adds models. Registration is all-or-nothing: on error nothing is added.
func (r *Registry) Register(models ...Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(models))
	for _, m := range models {
		if m.Name == "" {
			return ErrEmptyModelName
		}
		if _, exists := r.models[m.Name]; exists {
			return ErrModelAlreadyRegistered
		}
		if _, dup := seen[m.Name]; dup {
			return ErrModelAlreadyRegistered
		}
		seen[m.Name] = struct{}{}
	}

	for _, m := range models {
		entry := m.clone()
		r.models[m.Name] = &entry
		r.order = append(r.order, m.Name)
	}
	return nil
}

// ListModels returns copies of all models in registration order.
func (r *Registry) ListModels(ctx context.Context) ([]Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Model, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name].clone())
	}
	return out, nil
}

// Names returns all registered model names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Count returns the number of registered models
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// SetArchitecture attaches metadata to a model. Returns false if the model is unknown.
func (r *Registry) SetArchitecture(name string, arch Architecture) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.models[name]
	if !ok {
		return false
	}
	a := arch
	m.Architecture = &a
	return true
}
