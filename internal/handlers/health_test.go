package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/tasktrack/internal/handlers"
)

func TestRoot(t *testing.T) {
	handler := handlers.NewHealthHandler(&handlers.MockPinger{}, "Tasktrack API", "1.0.0")

	w := httptest.NewRecorder()
	handler.Root(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp handlers.HealthResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Tasktrack API", resp.App)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		handler := handlers.NewHealthHandler(&handlers.MockPinger{}, "Tasktrack API", "1.0.0")

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		var resp handlers.HealthResponse
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "connected", resp.Database)
	})

	t.Run("database down", func(t *testing.T) {
		handler := handlers.NewHealthHandler(&handlers.MockPinger{Err: errors.New("timeout")}, "Tasktrack API", "1.0.0")

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		var resp handlers.HealthResponse
		handlers.AssertJSONResponse(t, w, http.StatusServiceUnavailable, &resp)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "disconnected", resp.Database)
	})
}
