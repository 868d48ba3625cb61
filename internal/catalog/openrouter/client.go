// Package openrouter fetches model architecture metadata from an
// OpenRouter-compatible models endpoint and applies it to the catalog.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/llm-model-access/internal/catalog"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// maxErrorBody caps how much of an error response is kept for the error message.
const maxErrorBody = 512

// Config holds client settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the models endpoint
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type modelsResponse struct {
	Data []modelEntry `json:"data"`
}

type modelEntry struct {
	ID           string        `json:"id"`
	Architecture *architecture `json:"architecture"`
}

type architecture struct {
	InputModalities  []string `json:"input_modalities"`
	OutputModalities []string `json:"output_modalities"`
	Tokenizer        string   `json:"tokenizer"`
}

// FetchArchitectures returns architecture metadata keyed by model id.
// Entries without architecture data are skipped.
func (c *Client) FetchArchitectures(ctx context.Context) (map[string]catalog.Architecture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("models request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("models request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode models response: %w", err)
	}

	out := make(map[string]catalog.Architecture, len(payload.Data))
	for _, m := range payload.Data {
		if m.ID == "" || m.Architecture == nil {
			continue
		}
		out[m.ID] = catalog.Architecture{
			InputModalities:  m.Architecture.InputModalities,
			OutputModalities: m.Architecture.OutputModalities,
			Tokenizer:        m.Architecture.Tokenizer,
		}
	}
	return out, nil
}

// Enricher applies fetched metadata to a catalog.
type Enricher struct {
	client   *Client
	accessor catalog.ArchitectureAccessor
	logger   *zap.Logger
}

// NewEnricher creates an enricher for the given catalog
func NewEnricher(client *Client, accessor catalog.ArchitectureAccessor, logger *zap.Logger) *Enricher {
	return &Enricher{
		client:   client,
		accessor: accessor,
		logger:   logger,
	}
}

// Enrich fetches metadata and attaches it to registered models.
func (e *Enricher) Enrich(ctx context.Context) error {
	archs, err := e.client.FetchArchitectures(ctx)
	if err != nil {
		return err
	}

	enriched := catalog.Enrich(e.accessor, archs)
	e.logger.Info("enriched models with architecture metadata",
		zap.Int("enriched", enriched),
		zap.Int("fetched", len(archs)),
		zap.Int("total", len(e.accessor.Names())))
	return nil
}
