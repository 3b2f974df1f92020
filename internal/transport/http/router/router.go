package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/metrics"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/handlers"
	authmw "github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/middleware"
)

func New(
	h *handlers.PublicationsHandler,
	auth *authmw.AuthMiddleware,
	z *handlers.HealthHandler,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(authmw.RequestID)
	r.Use(authmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authmw.AccessLog)

	r.Get("/healthz", z.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/syndication/v1", func(r chi.Router) {
		if cfg.RLEnabled {
			r.Use(httprate.Limit(
				cfg.RLLimit,
				cfg.RLWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}
		r.Use(auth.Require)

		r.Route("/events/{event_id}", func(r chi.Router) {
			r.Post("/publications", h.Publish)
			r.Put("/publications", h.Update)
			r.Get("/publications", h.List)
			r.Delete("/publications/{platform}", h.Withdraw)
			r.Get("/exports/resident-advisor", h.ExportResidentAdvisor)
		})
	})

	return r
}
