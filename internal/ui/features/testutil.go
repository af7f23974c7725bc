// Package features provides shared test utilities for the gateway
// feature handler tests.
package features

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/cache"
	"github.com/querydeck/querydeck/internal/dashboard"
	"github.com/querydeck/querydeck/internal/session"
	"github.com/querydeck/querydeck/internal/testutil"
	"github.com/querydeck/querydeck/internal/ui/notifier"
	"github.com/querydeck/querydeck/internal/ui/state"
)

// TestDebounce keeps write-back coalescing fast in tests.
const TestDebounce = 20 * time.Millisecond

// TestFixture holds all dependencies needed for gateway handler tests.
type TestFixture struct {
	Backend      *testutil.FakeBackend
	Cache        *cache.MemoryStore
	Registry     *state.Registry
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture wires a registry against a fake backend serving the
// given snapshot as canonical server state.
func SetupTestFixture(t *testing.T, snap *dashboard.Snapshot) *TestFixture {
	t.Helper()

	fake := testutil.NewFakeBackend()
	fake.SetPayload(PayloadOf(t, snap))
	store := cache.NewMemoryStore()
	notify := notifier.New()

	registry := state.NewRegistry(fake, store, testutil.NewTestLogger(t), notify, TestDebounce)
	t.Cleanup(registry.Close)

	return &TestFixture{
		Backend:      fake,
		Cache:        store,
		Registry:     registry,
		Notifier:     notify,
		SessionStore: sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")),
	}
}

// Acquire returns the session for a user key, waiting out the
// background reconcile so handler tests see settled state.
func (f *TestFixture) Acquire(t *testing.T, user string) *state.Session {
	t.Helper()
	sess := f.Registry.Acquire(user)
	require.Eventually(t, func() bool {
		v := sess.Coord.View()
		return v.State == session.StateIdle || v.State == session.StateDegraded
	}, 2*time.Second, 5*time.Millisecond, "session never settled")
	return sess
}

// SeedSnapshot returns the canonical two-folder, two-item snapshot
// most handler tests start from.
func SeedSnapshot(t *testing.T, rawItems, rawFolders string) *dashboard.Snapshot {
	t.Helper()
	if rawItems == "" {
		rawItems = `[
			{"id": "q1", "title": "Orders", "text": "SELECT * FROM orders", "category": "General",
			 "preview": {"columns": ["region", "total"], "rows": [["west", 10], ["east", 20]]}},
			{"id": "q2", "title": "Signups", "text": "SELECT * FROM signups", "category": "General"}
		]`
	}
	if rawFolders == "" {
		rawFolders = `[
			{"id": "f1", "name": "General", "tone": "blue"},
			{"id": "f2", "name": "Reports", "tone": "emerald"}
		]`
	}
	res := dashboard.Normalize(decodeRaw(t, rawItems), decodeRaw(t, rawFolders))
	return res.Snapshot
}

// PayloadOf re-encodes a snapshot as the server's wire payload.
func PayloadOf(t *testing.T, snap *dashboard.Snapshot) *backend.DashboardPayload {
	t.Helper()
	encode := func(v any) []dashboard.RawRecord {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		var list []any
		require.NoError(t, json.Unmarshal(data, &list))
		return dashboard.ToRawRecords(list)
	}
	return &backend.DashboardPayload{
		Queries: encode(snap.Items),
		Folders: encode(snap.Folders),
	}
}

func decodeRaw(t *testing.T, src string) []dashboard.RawRecord {
	t.Helper()
	var list []any
	require.NoError(t, json.Unmarshal([]byte(src), &list))
	return dashboard.ToRawRecords(list)
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
