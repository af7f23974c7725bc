// Package cache holds the last-known dashboard snapshot per user key.
// The cache is a render accelerator, never a source of truth: the
// server owns durable state and the coordinator overwrites the cache on
// every successful reconciliation.
package cache

import (
	"sync"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// Store is a keyed snapshot holder. Implementations must return deep
// copies so callers can never mutate cached state in place.
type Store interface {
	// Get returns the cached snapshot for a user key, if any.
	Get(user string) (*dashboard.Snapshot, bool)
	// Put replaces the cached snapshot for a user key.
	Put(user string, snap *dashboard.Snapshot) error
	// Delete drops the cached snapshot for a user key.
	Delete(user string) error
	// Close releases any underlying resources.
	Close() error
}

// MemoryStore is the in-process Store used when no cache file is
// configured and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*dashboard.Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]*dashboard.Snapshot{}}
}

// Get implements Store.
func (s *MemoryStore) Get(user string) (*dashboard.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.byID[user]
	if !ok {
		return nil, false
	}
	return snap.Clone(), true
}

// Put implements Store.
func (s *MemoryStore) Put(user string, snap *dashboard.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user] = snap.Clone()
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, user)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
