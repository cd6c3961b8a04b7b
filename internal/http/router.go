// Package http assembles the portal's route tree.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lochandler "vecinal/internal/location/handler"
	memhandler "vecinal/internal/member/handler"
	newshandler "vecinal/internal/news/handler"
	"vecinal/internal/platform/metrics"
	"vecinal/internal/platform/middleware"
	"vecinal/internal/platform/token"
	projhandler "vecinal/internal/project/handler"
	statshandler "vecinal/internal/stats/handler"
	tribhandler "vecinal/internal/tribunal/handler"
	userhandler "vecinal/internal/user/handler"
)

// Handlers collects every domain handler the router mounts.
type Handlers struct {
	Locations *lochandler.Handler
	Members   *memhandler.Handler
	News      *newshandler.Handler
	Projects  *projhandler.Handler
	Tribunals *tribhandler.Handler
	Users     *userhandler.Handler
	Stats     *statshandler.Handler
}

// New builds the route tree: public reads and session endpoints, then an
// authenticated group, with staff and admin write groups nested inside it.
func New(h Handlers, validator token.Validator, httpMetrics *metrics.Metrics, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestLogger(logger))
	r.Use(httpMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public. Identity is still resolved when a token arrives so staff
		// browsing the public listings keep their elevated view.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(validator, logger))
			h.Users.Register(r)
			h.Members.Register(r)
			h.Locations.Register(r)
			h.News.Register(r)
			h.Projects.Register(r)
			h.Tribunals.Register(r)
		})

		// Authenticated.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator, logger))
			h.Users.RegisterAuthenticated(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaffOrAdmin())
				h.News.RegisterStaff(r)
				h.Projects.RegisterStaff(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())
				h.Users.RegisterAdmin(r)
				h.Members.RegisterAdmin(r)
				h.Locations.RegisterAdmin(r)
				h.News.RegisterAdmin(r)
				h.Projects.RegisterAdmin(r)
				h.Tribunals.RegisterAdmin(r)
				h.Stats.RegisterAdmin(r)
			})
		})
	})

	return r
}
