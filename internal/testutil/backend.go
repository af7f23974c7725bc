package testutil

import (
	"context"
	"sync"

	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/dashboard"
)

// FakeBackend is an in-memory backend.Client for tests. Behavior is
// overridable per call; by default reads serve the stored payload and
// writes record the snapshot.
type FakeBackend struct {
	mu sync.Mutex

	Payload *backend.DashboardPayload
	Bundles map[string]dashboard.RawRecord

	FetchErr  error
	SaveErr   error
	BundleErr error

	fetchCount int
	saveCount  int
	saved      []*dashboard.Snapshot
}

// NewFakeBackend returns a fake serving an empty payload.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Payload: &backend.DashboardPayload{},
		Bundles: map[string]dashboard.RawRecord{},
	}
}

// FetchDashboard implements backend.Client.
func (f *FakeBackend) FetchDashboard(_ context.Context, _ string) (*backend.DashboardPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCount++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return f.Payload, nil
}

// SaveDashboard implements backend.Client.
func (f *FakeBackend) SaveDashboard(_ context.Context, _ string, snap *dashboard.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCount++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.saved = append(f.saved, snap.Clone())
	return nil
}

// FetchBundles implements backend.Client.
func (f *FakeBackend) FetchBundles(_ context.Context, _ string, ids []string) (map[string]dashboard.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BundleErr != nil {
		return nil, f.BundleErr
	}
	out := map[string]dashboard.RawRecord{}
	for _, id := range ids {
		if b, ok := f.Bundles[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

// SetFetchErr switches read behavior.
func (f *FakeBackend) SetFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchErr = err
}

// SetSaveErr switches write behavior.
func (f *FakeBackend) SetSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveErr = err
}

// SetPayload replaces the served payload.
func (f *FakeBackend) SetPayload(p *backend.DashboardPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payload = p
}

// FetchCount reports how many dashboard reads happened.
func (f *FakeBackend) FetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCount
}

// SaveCount reports how many snapshot writes happened, including
// failed ones.
func (f *FakeBackend) SaveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCount
}

// LastSaved returns the most recent successfully written snapshot.
func (f *FakeBackend) LastSaved() *dashboard.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}
