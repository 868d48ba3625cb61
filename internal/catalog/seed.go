package catalog

import (
	"fmt"
	"os"

	"github.com/upb/llm-model-access/utils"
	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk catalog format.
type seedFile struct {
	Models []Model `yaml:"models" validate:"required,dive"`
}

// DefaultModels is the built-in catalog used when no seed file is configured.
func DefaultModels() []Model {
	return []Model{
		{Name: "google/gemma-3-27b-it:free", DisplayName: "Gemma 3 27B (free)", Provider: "openrouter"},
		{Name: "openai/gpt-oss-20b:free", DisplayName: "gpt-oss-20b (free)", Provider: "openrouter"},
		{Name: "moonshotai/kimi-k2:free", DisplayName: "Kimi K2 (free)", Provider: "openrouter"},
		{Name: "z-ai/glm-4.5-air:free", DisplayName: "GLM 4.5 Air (free)", Provider: "openrouter"},
		{Name: "deepseek/deepseek-chat-v3.1:free", DisplayName: "DeepSeek V3.1 (free)", Provider: "openrouter"},
		{Name: "openai/gpt-4o", DisplayName: "GPT-4o", Provider: "openrouter"},
		{Name: "anthropic/claude-sonnet-4", DisplayName: "Claude Sonnet 4", Provider: "openrouter"},
		{Name: "google/gemini-2.5-flash-image-preview", DisplayName: "Gemini 2.5 Flash Image", Provider: "openrouter"},
	}
}

// LoadFile reads a YAML seed catalog. An empty path yields DefaultModels.
func LoadFile(path string) ([]Model, error) {
	if path == "" {
		return DefaultModels(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog %s: %w", path, err)
	}
	if err := utils.ValidateStruct(&f); err != nil {
		return nil, fmt.Errorf("invalid model catalog %s: %w", path, err)
	}

	return f.Models, nil
}
