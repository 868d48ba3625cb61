package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/upb/llm-model-access/config"
	"github.com/upb/llm-model-access/internal/access"
	"github.com/upb/llm-model-access/utils"
	"gopkg.in/yaml.v3"
)

// PolicyDocument is the on-disk policy format. Fields left out of the file
// keep their baseline value; an explicit empty list empties the allow-list.
//
//	guest_models:
//	  - google/gemma-3-27b-it:free
//	demo_mode:
//	  enabled: true
//	  restrict_guests: true
//	free_tier_message_limit: 6
type PolicyDocument struct {
	GuestModels          []string      `yaml:"guest_models" validate:"omitempty,dive,modelid"`
	DemoModels           []string      `yaml:"demo_models" validate:"omitempty,dive,modelid"`
	FreeTierModels       []string      `yaml:"free_tier_models" validate:"omitempty,dive,modelid"`
	DemoMode             *DemoDocument `yaml:"demo_mode"`
	FreeTierMessageLimit *int          `yaml:"free_tier_message_limit" validate:"omitempty,gte=0"`
}

// DemoDocument overrides individual demo mode switches.
type DemoDocument struct {
	Enabled          *bool `yaml:"enabled"`
	RestrictLoggedIn *bool `yaml:"restrict_logged_in"`
	RestrictGuests   *bool `yaml:"restrict_guests"`
}

// Defaults converts the environment baseline into registry input.
func Defaults(cfg config.AccessConfig) access.RegistryConfig {
	return access.RegistryConfig{
		GuestModels:    append([]string(nil), cfg.GuestModels...),
		DemoModels:     append([]string(nil), cfg.DemoModels...),
		FreeTierModels: append([]string(nil), cfg.FreeTierModels...),
		DemoMode: access.DemoMode{
			Enabled:          cfg.DemoModeEnabled,
			RestrictLoggedIn: cfg.DemoRestrictLoggedIn,
			RestrictGuests:   cfg.DemoRestrictGuests,
		},
		FreeTierMessageLimit: cfg.FreeTierMessageLimit,
	}
}

// Apply layers the document over base. A nil document returns base unchanged.
func (d *PolicyDocument) Apply(base access.RegistryConfig) access.RegistryConfig {
	if d == nil {
		return base
	}

	out := base
	if d.GuestModels != nil {
		out.GuestModels = d.GuestModels
	}
	if d.DemoModels != nil {
		out.DemoModels = d.DemoModels
	}
	if d.FreeTierModels != nil {
		out.FreeTierModels = d.FreeTierModels
	}
	if d.FreeTierMessageLimit != nil {
		out.FreeTierMessageLimit = *d.FreeTierMessageLimit
	}
	if dm := d.DemoMode; dm != nil {
		if dm.Enabled != nil {
			out.DemoMode.Enabled = *dm.Enabled
		}
		if dm.RestrictLoggedIn != nil {
			out.DemoMode.RestrictLoggedIn = *dm.RestrictLoggedIn
		}
		if dm.RestrictGuests != nil {
			out.DemoMode.RestrictGuests = *dm.RestrictGuests
		}
	}
	return out
}

// LoadFile reads and validates a policy document.
// An empty path or a file that does not exist yields (nil, nil).
func LoadFile(path string) (*PolicyDocument, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a policy document.
func Parse(data []byte) (*PolicyDocument, error) {
	var doc PolicyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if err := utils.ValidateStruct(doc); err != nil {
		return nil, fmt.Errorf("invalid policy file: %w", err)
	}
	return &doc, nil
}
