package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yashng7/zero-grid/internal/auth"
	"github.com/yashng7/zero-grid/internal/issues"
	"github.com/yashng7/zero-grid/internal/observability"
	"github.com/yashng7/zero-grid/internal/platform/httpx"
	"github.com/yashng7/zero-grid/internal/users"
	"github.com/yashng7/zero-grid/jobs"
)

// HealthCheck checks one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	IssuesHandler  *issues.Handler
	UsersHandler   *users.Handler
	JobHandler     *jobs.Handler
	AuthMiddleware func(http.Handler) http.Handler
	HealthChecks   []HealthCheck
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with ZEROGRID defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", healthHandler(params.Logger, params.HealthChecks))

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	r.Group(func(r chi.Router) {
		if params.AuthMiddleware != nil {
			r.Use(params.AuthMiddleware)
		}
		if params.IssuesHandler != nil {
			r.Route("/issues", params.IssuesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
	})
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func healthHandler(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Warn("health check failed", slog.String("check", c.Name), slog.Any("error", err))
				status[c.Name] = "down"
				healthy = false
				continue
			}
			status[c.Name] = "up"
		}
		if !healthy {
			httpx.JSON(w, http.StatusServiceUnavailable, httpx.Envelope{Success: false, Data: status, Error: "Service unavailable"})
			return
		}
		httpx.OK(w, http.StatusOK, status)
	}
}
