package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the routes and the middleware chain.
func NewRouter(h *Handler, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger.With("component", "http")))
	r.Use(Metrics())

	r.Get("/health", h.Health)
	r.Get("/system-stats", h.Stats)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	// content may be public, auth is optional
	r.Get("/files/{id}/data", h.FileData)

	r.Group(func(r chi.Router) {
		r.Use(RequireUser(h.guard))

		r.Post("/logout", h.Logout)
		r.Get("/profile", h.Profile)

		r.Post("/files", h.CreateFile)
		r.Get("/files", h.ListFiles)
		r.Get("/files/{id}", h.GetFile)
		r.Put("/files/{id}/publish", h.Publish)
		r.Put("/files/{id}/unpublish", h.Unpublish)
	})

	return r
}
