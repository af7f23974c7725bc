package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/querydeck/querydeck/internal/ui/state"
)

// SetupRoutes registers the dashboard feature routes.
func SetupRoutes(router chi.Router, registry *state.Registry, sessionStore sessions.Store, defaultUser string) error {
	handlers := NewHandlers(registry, sessionStore, defaultUser)

	router.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/", handlers.GetDashboard)
		r.Post("/refresh", handlers.Refresh)
	})

	router.Route("/api/items", func(r chi.Router) {
		r.Post("/", handlers.AddItem)
		r.Post("/delete", handlers.DeleteItems)
		r.Post("/{id}/pin", handlers.TogglePin)
		r.Post("/{id}/duplicate", handlers.DuplicateItem)
		r.Post("/{id}/move", handlers.MoveItem)
		r.Get("/{id}/stats", handlers.ItemStats)
		r.Get("/{id}/figure", handlers.ItemFigure)
	})

	router.Route("/api/folders", func(r chi.Router) {
		r.Post("/", handlers.CreateFolder)
		r.Patch("/{id}", handlers.RenameFolder)
		r.Delete("/{id}", handlers.DeleteFolder)
	})

	router.Post("/api/bundles", handlers.HydrateBundles)

	return nil
}
