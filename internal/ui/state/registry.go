// Package state owns the gateway's per-user session registry, pairing
// each user key's sync coordinator with its transient comparison
// session.
package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/cache"
	"github.com/querydeck/querydeck/internal/compare"
	"github.com/querydeck/querydeck/internal/session"
	"github.com/querydeck/querydeck/internal/ui/notifier"
)

// Session pairs one user's sync coordinator with its transient
// comparison state.
type Session struct {
	Coord   *session.Coordinator
	Compare *compare.Session
}

// Registry hands out the active per-user session. One session is live
// at a time: it is created on first use for a user key and torn down
// when a different user key shows up, so a pending write-back can never
// land under the wrong user.
type Registry struct {
	client   backend.Client
	cache    cache.Store
	logger   *slog.Logger
	notify   *notifier.Notifier
	debounce time.Duration

	mu     sync.Mutex
	active *Session
}

// NewRegistry creates a session registry.
func NewRegistry(client backend.Client, store cache.Store, logger *slog.Logger, notify *notifier.Notifier, debounce time.Duration) *Registry {
	return &Registry{
		client:   client,
		cache:    store,
		logger:   logger,
		notify:   notify,
		debounce: debounce,
	}
}

// Acquire returns the session for a user key, creating it (and
// discarding the previous user's session) as needed.
func (r *Registry) Acquire(user string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil && r.active.Coord.User() == user {
		return r.active
	}
	if r.active != nil {
		r.active.Coord.Close()
	}
	coord := session.New(session.Config{
		User:     user,
		Client:   r.client,
		Cache:    r.cache,
		Logger:   r.logger,
		Debounce: r.debounce,
		OnChange: r.notify.Broadcast,
	})
	cmp := compare.NewSession()
	coord.OnItemsChanged(cmp.Prune)
	coord.Open()
	r.active = &Session{Coord: coord, Compare: cmp}
	return r.active
}

// Close tears down the active session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Coord.Close()
		r.active = nil
	}
}
