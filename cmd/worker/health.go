package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/momentum/pkg/observability"
)

const readinessTimeout = 2 * time.Second

// healthSources is what the worker exposes over HTTP.
type healthSources struct {
	Outbox  func() outbox.Stats
	Backlog func(context.Context) (outbox.Backlog, error)
	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics
}

// newHealthMux serves liveness with relay and recompute counters, and
// readiness from the dependency checks. Degraded still counts as ready.
func newHealthMux(src healthSources) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"status":  "ok",
			"outbox":  src.Outbox(),
			"metrics": src.Metrics.Snapshot(),
		}
		if src.Backlog != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			defer cancel()
			if backlog, err := src.Backlog(ctx); err == nil {
				body["backlog"] = backlog
			} else {
				body["backlog_error"] = err.Error()
			}
		}
		writeJSON(w, http.StatusOK, body)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		health := src.Health.Check(ctx)
		status := http.StatusOK
		if health.Status == observability.HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
