// Package router wires the gateway's feature routes together.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	comparisonFeature "github.com/querydeck/querydeck/internal/ui/features/comparison"
	dashboardFeature "github.com/querydeck/querydeck/internal/ui/features/dashboard"
	"github.com/querydeck/querydeck/internal/ui/notifier"
	"github.com/querydeck/querydeck/internal/ui/state"
)

// longPollTimeout bounds how long /api/events holds a connection open
// before answering "no change".
const longPollTimeout = 25 * time.Second

// SetupRoutes configures all routes for the gateway server.
func SetupRoutes(
	router chi.Router,
	registry *state.Registry,
	sessionStore *sessions.CookieStore,
	notify *notifier.Notifier,
	defaultUser string,
) error {
	if err := dashboardFeature.SetupRoutes(router, registry, sessionStore, defaultUser); err != nil {
		return err
	}
	if err := comparisonFeature.SetupRoutes(router, registry, sessionStore, defaultUser); err != nil {
		return err
	}

	setupEvents(router, notify)
	return nil
}

// setupEvents registers the long-poll change feed: clients block until
// session state changes, then re-query the dashboard view.
func setupEvents(router chi.Router, notify *notifier.Notifier) {
	router.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {
		ch := notify.Subscribe()
		defer notify.Unsubscribe(ch)

		select {
		case <-ch:
			w.WriteHeader(http.StatusOK)
		case <-time.After(longPollTimeout):
			w.WriteHeader(http.StatusNoContent)
		case <-r.Context().Done():
		}
	})
}
