// Package httptransport is the thin HTTP layer over the audit engine's
// domain services. Handlers decode, delegate and encode; business rules stay
// in the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certus/internal/platform/metrics"
	"certus/internal/platform/middleware"
	"certus/internal/transport/http/shared"
)

// HealthCheck probes one dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Deps bundles everything the router mounts.
type Deps struct {
	Templates  *TemplateHandler
	Reports    *ReportHandler
	Findings   *FindingHandler
	Frameworks *FrameworkHandler
	Schedules  *ScheduleHandler
	Activity   *ActivityHandler

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Health holds named dependency probes surfaced on /healthz.
	Health map[string]HealthCheck
}

// NewRouter assembles the chi router with the standard middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Templates.Register(r)
		deps.Reports.Register(r)
		deps.Findings.Register(r)
		deps.Frameworks.Register(r)
		deps.Schedules.Register(r)
		deps.Activity.Register(r)
	})

	return r
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = err.Error()
			} else {
				result[name] = "ok"
			}
		}
		shared.WriteJSON(w, status, result)
	}
}
