package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/llm-model-access/app"
	"github.com/upb/llm-model-access/utils"
	"go.uber.org/zap"
)

// readinessTimeout bounds the dependency checks behind /readyz
const readinessTimeout = 2 * time.Second

// ReadinessResponse is the body of GET /readyz
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StatusResponse is the body of GET /api/v1/status
type StatusResponse struct {
	Version              string         `json:"version"`
	Environment          string         `json:"environment"`
	DemoMode             DemoModeStatus `json:"demoMode"`
	AllowLists           AllowListSizes `json:"allowLists"`
	FreeTierMessageLimit int            `json:"freeTierMessageLimit"`
	Models               int            `json:"models"`
	Enrichment           string         `json:"enrichment"`
}

// DemoModeStatus mirrors the active demo mode switches
type DemoModeStatus struct {
	Enabled          bool `json:"enabled"`
	RestrictLoggedIn bool `json:"restrictLoggedIn"`
	RestrictGuests   bool `json:"restrictGuests"`
}

// AllowListSizes counts the entries of each allow-list
type AllowListSizes struct {
	Guest    int `json:"guest"`
	Demo     int `json:"demo"`
	FreeTier int `json:"freeTier"`
}

// HealthCheck returns a simple liveness handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, map[string]string{"status": "ok"})
	}
}

// ReadinessCheck reports enrichment progress and database health.
// Enrichment is best effort, so only a failing database makes the service not ready.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		response := ReadinessResponse{
			Status: "ready",
			Checks: map[string]string{
				"enrichment": deps.EnrichmentState(),
			},
		}

		if deps.Health == nil {
			response.Checks["database"] = "not_configured"
		} else if err := deps.Health.HealthCheck(ctx); err != nil {
			response.Status = "not_ready"
			response.Checks["database"] = "unhealthy"
			deps.Logger.Error("database health check failed", zap.Error(err))
		} else {
			response.Checks["database"] = "healthy"
		}

		status := http.StatusOK
		if response.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		if err := utils.WriteJSON(w, status, response); err != nil {
			deps.Logger.Error("failed to write readiness response", zap.Error(err))
		}
	}
}

// StatusHandler returns the active access configuration
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := deps.Policies.Snapshot()
		demo := snapshot.DemoMode()

		response := StatusResponse{
			Version:     app.Version,
			Environment: deps.Config.Environment,
			DemoMode: DemoModeStatus{
				Enabled:          demo.Enabled,
				RestrictLoggedIn: demo.RestrictLoggedIn,
				RestrictGuests:   demo.RestrictGuests,
			},
			AllowLists: AllowListSizes{
				Guest:    snapshot.GuestModels().Len(),
				Demo:     snapshot.DemoModels().Len(),
				FreeTier: snapshot.FreeTierModels().Len(),
			},
			FreeTierMessageLimit: snapshot.FreeTierMessageLimit(),
			Models:               deps.Catalog.Count(),
			Enrichment:           deps.EnrichmentState(),
		}

		if err := utils.WriteOK(w, response); err != nil {
			deps.Logger.Error("failed to write status response", zap.Error(err))
		}
	}
}
