// Package watchhttp exposes the renewal daemon's health and metrics
// endpoints.
package watchhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthCheckTimeout = 2 * time.Second

// HealthFunc reports whether the daemon's dependencies are reachable.
type HealthFunc func(ctx context.Context) error

// Router exposes HTTP endpoints for the certwatch daemon.
type Router struct {
	mux    *http.ServeMux
	logger *slog.Logger
	health HealthFunc
}

// New creates and registers handlers.
func New(logger *slog.Logger, health HealthFunc) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
		health: health,
	}
	r.mux.HandleFunc("/metrics", promhttp.Handler().ServeHTTP)
	r.mux.HandleFunc("/healthz", r.handleHealth)
	return r
}

// ServeHTTP satisfies http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
	defer cancel()
	status := "ok"
	code := http.StatusOK
	component := map[string]any{"status": "up"}
	if err := r.health(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		component = map[string]any{"status": "down", "error": err.Error()}
	}
	r.writeJSON(w, code, map[string]any{
		"status": status,
		"components": map[string]any{
			"docker": component,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (r *Router) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.logger.Error("failed to encode response", "error", err)
	}
}
