package comparison

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/querydeck/querydeck/internal/ui/state"
)

// SetupRoutes registers the comparison feature routes.
func SetupRoutes(router chi.Router, registry *state.Registry, sessionStore sessions.Store, defaultUser string) error {
	handlers := NewHandlers(registry, sessionStore, defaultUser)

	router.Route("/api/compare", func(r chi.Router) {
		r.Get("/", handlers.Get)
		r.Post("/select", handlers.Select)
		r.Post("/deselect", handlers.Deselect)
		r.Post("/reorder", handlers.Reorder)
		r.Post("/visibility", handlers.ToggleVisibility)
		r.Post("/run", handlers.Run)
	})

	return nil
}
