package session

import (
	"context"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// HydrateBundles fetches the heavy per-item payloads for the given ids
// in one batched call and overlays each onto the matching live item.
// Bundles are read-throughs: the merged result updates the cache but is
// never persisted back to the server. A network failure leaves every
// item as it was; callers degrade gracefully with whatever is present.
func (c *Coordinator) HydrateBundles(ctx context.Context, ids []string) (map[string]dashboard.Item, error) {
	if len(ids) == 0 {
		return map[string]dashboard.Item{}, nil
	}
	bundles, err := c.client.FetchBundles(ctx, c.user, ids)
	if err != nil {
		c.logger.Warn("bundle fetch failed", "count", len(ids), "error", err)
		return map[string]dashboard.Item{}, err
	}

	c.mu.Lock()
	if c.live == nil {
		c.mu.Unlock()
		return map[string]dashboard.Item{}, ErrSessionNotReady
	}
	for id, raw := range bundles {
		// Responses for ids that have left the snapshot since the
		// request went out are simply ignored.
		if it := c.live.ItemByID(id); it != nil {
			dashboard.MergeBundle(it, raw)
		}
	}
	snap := c.live.Clone()
	c.mu.Unlock()

	if err := c.cache.Put(c.user, snap); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
	c.notify()

	out := make(map[string]dashboard.Item, len(ids))
	for _, id := range ids {
		if it := snap.ItemByID(id); it != nil {
			out[id] = *it
		}
	}
	return out, nil
}
