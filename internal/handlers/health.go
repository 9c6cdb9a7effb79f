package handlers

import (
	"context"
	"net/http"

	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse is returned by the root and health endpoints
type HealthResponse struct {
	Status   string `json:"status"`
	App      string `json:"app"`
	Version  string `json:"version"`
	Database string `json:"database,omitempty"`
}

type HealthHandler struct {
	db      Pinger
	appName string
	version string
}

func NewHealthHandler(db Pinger, appName, version string) *HealthHandler {
	return &HealthHandler{db: db, appName: appName, version: version}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		App:     h.appName,
		Version: h.version,
	})
}

// Health also checks the database; an unreachable database yields 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "healthy",
		App:      h.appName,
		Version:  h.version,
		Database: "connected",
	}

	if err := h.db.HealthCheck(r.Context()); err != nil {
		resp.Status, resp.Database = "unhealthy", "disconnected"
		pkghttp.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
