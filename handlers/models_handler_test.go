package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-model-access/internal/access"
	"github.com/upb/llm-model-access/middleware"
)

type modelEntry struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	IsLocked       bool   `json:"isLocked"`
	IsGuestAllowed bool   `json:"isGuestAllowed"`
	IsDemoAllowed  bool   `json:"isDemoAllowed"`
	IsDemoMode     bool   `json:"isDemoMode"`
}

func decodeModels(t *testing.T, w *httptest.ResponseRecorder) map[string]modelEntry {
	t.Helper()
	var body struct {
		Models []modelEntry `json:"models"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

	out := make(map[string]modelEntry, len(body.Models))
	for _, m := range body.Models {
		out[m.Name] = m
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestListModelsHandler(t *testing.T) {
	t.Run("guest sees guest allow-list unlocked", func(t *testing.T) {
		deps := newTestDeps(t, testPolicy, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		w := httptest.NewRecorder()
		ListModelsHandler(deps)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		models := decodeModels(t, w)
		require.Len(t, models, 3)
		assert.False(t, models["free/a"].IsLocked)
		assert.True(t, models["free/b"].IsLocked)
		assert.True(t, models["paid/c"].IsLocked)
		assert.True(t, models["free/a"].IsGuestAllowed)
		assert.Equal(t, "A", models["free/a"].DisplayName)
	})

	t.Run("free plan uses free-tier list", func(t *testing.T) {
		deps := newTestDeps(t, testPolicy, nil)

		session := &access.Session{UserID: uuid.New(), PlanTier: strPtr("free")}
		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		req = req.WithContext(middleware.WithSession(req.Context(), session))
		w := httptest.NewRecorder()
		ListModelsHandler(deps)(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		models := decodeModels(t, w)
		assert.False(t, models["free/a"].IsLocked)
		assert.False(t, models["free/b"].IsLocked)
		assert.True(t, models["paid/c"].IsLocked)
	})

	t.Run("paid plan is unrestricted", func(t *testing.T) {
		deps := newTestDeps(t, testPolicy, nil)

		session := &access.Session{UserID: uuid.New(), PlanTier: strPtr("pro")}
		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		req = req.WithContext(middleware.WithSession(req.Context(), session))
		w := httptest.NewRecorder()
		ListModelsHandler(deps)(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		for name, m := range decodeModels(t, w) {
			assert.False(t, m.IsLocked, name)
		}
	})

	t.Run("demo mode restricts paid plan", func(t *testing.T) {
		policy := testPolicy
		policy.DemoMode = access.DemoMode{Enabled: true, RestrictLoggedIn: true, RestrictGuests: true}
		deps := newTestDeps(t, policy, nil)

		session := &access.Session{UserID: uuid.New(), PlanTier: strPtr("pro")}
		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		req = req.WithContext(middleware.WithSession(req.Context(), session))
		w := httptest.NewRecorder()
		ListModelsHandler(deps)(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		models := decodeModels(t, w)
		assert.True(t, models["free/a"].IsLocked)
		assert.False(t, models["free/b"].IsLocked)
		assert.True(t, models["paid/c"].IsLocked)
		assert.True(t, models["free/b"].IsDemoMode)
	})

	t.Run("catalog failure returns fixed message", func(t *testing.T) {
		deps := newTestDeps(t, testPolicy, failingSource{err: errors.New("upstream 503 from 10.0.0.7")})

		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		w := httptest.NewRecorder()
		ListModelsHandler(deps)(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch models"}`, w.Body.String())
	})

	t.Run("empty catalog encodes an empty array", func(t *testing.T) {
		deps := newTestDeps(t, testPolicy, failingSource{})

		req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
		w := httptest.NewRecorder()
		ListModelsHandler(deps)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"models":[]}`, w.Body.String())
	})
}
