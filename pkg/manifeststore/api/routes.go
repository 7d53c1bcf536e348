package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/metrics"
)

func (h *Handler) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(h.HostDetection)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)
	if h.metrics {
		r.Use(MetricsMiddleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, h.logger, fmt.Errorf("%w: no route for %s", apperrors.ErrNotFound, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorResponse(w, h.logger, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path, nil)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(DefaultHealthCheckTimeout))
		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)
	})

	r.Route("/activity", func(r chi.Router) {
		r.Use(middleware.Timeout(DefaultRequestTimeout))
		r.Get("/", h.ListEvents)
		r.Get("/errors", h.GetRecentErrors)
	})

	if h.metrics {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	mount := h.route
	if mount == "" {
		mount = "/"
	}
	r.Route(mount, func(r chi.Router) {
		r.Use(middleware.Timeout(DefaultRequestTimeout))
		r.Get("/", h.ListManifests)
		r.Post("/", h.CreateManifest)
		r.Get("/{id}", h.GetManifest)
		r.Put("/{id}", h.UpdateManifest)
		r.Delete("/{id}", h.DeleteManifest)
	})

	return r
}
