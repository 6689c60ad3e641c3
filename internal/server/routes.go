package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes registers the API routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/healthz", h.Health)

	router.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))
			r.Post("/format", h.Format)
			r.Post("/minify", h.Minify)
			r.Post("/compact", h.Compact)
			r.Post("/tables", h.Tables)
			r.Post("/validate", h.Validate)
			r.Post("/type", h.Type)
			r.Post("/variables", h.Variables)
			r.Post("/render", h.Render)
		})
		r.Get("/events", h.Events)
	})
}
