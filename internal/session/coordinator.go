// Package session implements the per-user dashboard session: cache-
// first rendering, background reconciliation against the authoritative
// server, optimistic mutations with debounced or immediate write-back,
// and lazy bundle hydration.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/cache"
	"github.com/querydeck/querydeck/internal/dashboard"
)

// State is the coordinator lifecycle state.
type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateReconciling State = "reconciling"
	StateDegraded    State = "degraded"
)

// Source identifies where the rendered snapshot came from. Exactly one
// reconciliation outcome exists; every "use demo data" decision funnels
// through it.
type Source string

const (
	// SourceFresh means the snapshot mirrors the last server response.
	SourceFresh Source = "fresh"
	// SourceCached means the server could not be reached and the local
	// cache is shown.
	SourceCached Source = "cached"
	// SourceDemo means the built-in demo snapshot is displayed. It is
	// never written to the cache.
	SourceDemo Source = "demo"
)

// DefaultDebounce is the write-back coalescing window.
const DefaultDebounce = 400 * time.Millisecond

// View is the renderable session state handed to the UI layer.
type View struct {
	State    State               `json:"state"`
	Source   Source              `json:"source"`
	Notice   string              `json:"notice,omitempty"`
	Snapshot *dashboard.Snapshot `json:"snapshot"`
}

// Config wires a Coordinator.
type Config struct {
	User     string
	Client   backend.Client
	Cache    cache.Store
	Logger   *slog.Logger
	Debounce time.Duration
	// OnChange is invoked (outside the session lock) whenever the
	// rendered snapshot changes for any reason.
	OnChange func()
}

// Coordinator orchestrates one user's dashboard session. All exported
// methods are safe for concurrent use; mutations apply synchronously to
// live state and cache, with persistence following per mutation kind.
type Coordinator struct {
	user     string
	client   backend.Client
	cache    cache.Store
	logger   *slog.Logger
	debounce time.Duration
	onChange func()

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	source  Source
	notice  string
	live    *dashboard.Snapshot
	timer   *time.Timer
	closed  bool
	pruners []func(valid map[string]struct{})
}

// New creates a Coordinator for one user key.
func New(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		user:     cfg.User,
		client:   cfg.Client,
		cache:    cfg.Cache,
		logger:   logger.With("user", cfg.User),
		debounce: debounce,
		onChange: cfg.OnChange,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
		source:   SourceCached,
	}
}

// User returns the session's user key.
func (c *Coordinator) User() string { return c.user }

// OnItemsChanged registers a hook invoked with the valid item-id set
// after every change to the item list, so id-keyed bookkeeping (the
// comparison selection, result caches) can prune stale entries.
func (c *Coordinator) OnItemsChanged(fn func(valid map[string]struct{})) {
	c.mu.Lock()
	c.pruners = append(c.pruners, fn)
	c.mu.Unlock()
}

// Open renders whatever the cache holds and kicks off a background
// authoritative fetch. With a cached snapshot the UI is usable
// immediately; without one it shows a blocking loading state until the
// fetch lands.
func (c *Coordinator) Open() View {
	c.mu.Lock()
	if snap, ok := c.cache.Get(c.user); ok {
		c.live = snap
		c.source = SourceCached
		c.state = StateReconciling
	} else {
		c.state = StateLoading
	}
	view := c.viewLocked()
	c.mu.Unlock()

	go func() {
		if _, err := c.Reconcile(c.ctx); err != nil {
			c.logger.Warn("background reconcile failed", "error", err)
		}
	}()
	return view
}

// Reconcile fetches the authoritative snapshot, normalizes it, and
// adopts the result. When the server signals absence it substitutes the
// built-in demo snapshot for display only. Detected drift triggers an
// immediate repair write-back. On fetch failure the previously rendered
// state stays up and the session degrades with a non-fatal notice.
func (c *Coordinator) Reconcile(ctx context.Context) (Source, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return c.source, context.Canceled
	}
	c.state = StateReconciling
	c.mu.Unlock()

	payload, err := c.client.FetchDashboard(ctx, c.user)
	if err != nil {
		return c.degrade(err), err
	}

	rawItems := payload.Queries
	demoRemoved := false
	if payload.Detail != "" {
		rawItems, demoRemoved = dashboard.StripLegacyDemo(rawItems)
	}

	// Empty payload plus an absence signal means this user has nothing
	// saved yet: show the demo dashboard without ever caching it.
	if len(rawItems) == 0 && len(payload.Folders) == 0 && payload.Detail != "" {
		c.mu.Lock()
		c.live = demoSnapshot()
		c.source = SourceDemo
		c.state = StateIdle
		c.notice = ""
		valid := c.live.ItemIDs()
		c.mu.Unlock()
		c.prune(valid)
		c.notify()
		return SourceDemo, nil
	}

	res := dashboard.Normalize(rawItems, payload.Folders)

	c.mu.Lock()
	c.live = res.Snapshot
	c.source = SourceFresh
	c.state = StateIdle
	c.notice = ""
	snap := c.live.Clone()
	valid := c.live.ItemIDs()
	c.mu.Unlock()

	if err := c.cache.Put(c.user, snap); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
	c.prune(valid)
	c.notify()

	if res.Changed || demoRemoved {
		// Repair write: push the canonical form back so the next read
		// starts clean. Non-debounced; failures are non-fatal.
		if err := c.persist(ctx, snap); err != nil {
			c.logger.Warn("repair write-back failed", "error", err)
		}
	}
	return SourceFresh, nil
}

// degrade keeps whatever was rendered, falling back to the demo
// snapshot when nothing was.
func (c *Coordinator) degrade(cause error) Source {
	c.mu.Lock()
	c.state = StateDegraded
	if c.live == nil {
		c.live = demoSnapshot()
		c.source = SourceDemo
		c.notice = "Could not reach the server; showing sample data."
	} else {
		c.notice = "Could not refresh from the server; showing your last saved view."
	}
	src := c.source
	c.mu.Unlock()
	c.logger.Warn("authoritative fetch failed", "error", cause)
	c.notify()
	return src
}

// View returns the current renderable state.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Coordinator) viewLocked() View {
	return View{
		State:    c.state,
		Source:   c.source,
		Notice:   c.notice,
		Snapshot: c.live.Clone(),
	}
}

// Item returns a copy of one live item, or nil.
func (c *Coordinator) Item(id string) *dashboard.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		return nil
	}
	it := c.live.ItemByID(id)
	if it == nil {
		return nil
	}
	clone := c.live.Clone().ItemByID(id)
	return clone
}

// persist writes the full snapshot to the server. It returns the write
// error; callers decide whether to surface it.
func (c *Coordinator) persist(ctx context.Context, snap *dashboard.Snapshot) error {
	return c.client.SaveDashboard(ctx, c.user, snap)
}

// schedulePersist (re)arms the single debounced write-back timer.
// Rapid successive edits coalesce into one network write carrying only
// the state current at fire time.
func (c *Coordinator) schedulePersist() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(c.debounce, func() { c.flushDebounced(t) })
	c.timer = t
}

// flushDebounced performs the silent debounced persist. Failures are
// logged, never surfaced; the next edit reschedules anyway. A flush
// whose timer was replaced between firing and acquiring the lock is
// superseded and does nothing, so at most one live timer persists.
func (c *Coordinator) flushDebounced(fired *time.Timer) {
	c.mu.Lock()
	if c.timer != fired {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	if c.closed || c.live == nil || c.source == SourceDemo {
		c.mu.Unlock()
		return
	}
	snap := c.live.Clone()
	c.mu.Unlock()

	if err := c.persist(c.ctx, snap); err != nil {
		c.logger.Warn("debounced persist failed", "error", err)
	}
}

// Close tears the session down, cancelling the pending write-back
// timer so nothing writes after disposal.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *Coordinator) prune(valid map[string]struct{}) {
	c.mu.Lock()
	pruners := append([]func(map[string]struct{}){}, c.pruners...)
	c.mu.Unlock()
	for _, fn := range pruners {
		fn(valid)
	}
}

func (c *Coordinator) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
