package app

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/grace-gov/grace-api/internal/auth"
	"github.com/grace-gov/grace-api/internal/authn"
	"github.com/grace-gov/grace-api/internal/authz"
	"github.com/grace-gov/grace-api/internal/committees"
	"github.com/grace-gov/grace-api/internal/meetings"
	"github.com/grace-gov/grace-api/internal/observability"
	"github.com/grace-gov/grace-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Authn            authn.Middleware
	Authz            authz.Middleware
	AuthHandler      *auth.Handler
	CommitteeHandler *committees.Handler
	MeetingHandler   *meetings.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with GRACE defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(params.Authn.Authenticate)
			params.AuthHandler.MountProtectedRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authn.Authenticate)
		r.Route("/committees", params.CommitteeHandler.MountRoutes)
		r.Route("/meetings", params.MeetingHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.Authz.RequireAdmin())
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
