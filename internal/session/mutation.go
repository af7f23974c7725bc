package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/querydeck/querydeck/internal/dashboard"
)

// applyDebounced runs a mutation against live state and cache, then
// schedules the coalesced write-back. The mutation either fully applies
// or returns a validation error with no state change.
func (c *Coordinator) applyDebounced(mutate func(s *dashboard.Snapshot) error, itemsChanged bool) error {
	demo, err := c.apply(mutate, itemsChanged)
	if err != nil {
		return err
	}
	if !demo {
		c.schedulePersist()
	}
	return nil
}

// applyImmediate runs a mutation and awaits a non-silent persist.
// The returned write error is surfaced to the caller; the optimistic
// local state stays applied.
func (c *Coordinator) applyImmediate(ctx context.Context, mutate func(s *dashboard.Snapshot) error, itemsChanged bool) error {
	demo, err := c.apply(mutate, itemsChanged)
	if err != nil {
		return err
	}
	if demo {
		return nil
	}
	c.mu.Lock()
	snap := c.live.Clone()
	c.mu.Unlock()
	return c.persist(ctx, snap)
}

// apply mutates live state under the lock. The demo snapshot stays a
// local, display-only scratchpad: while it is shown the mutation is
// applied but neither cached nor persisted, and the next reconcile
// replaces it.
func (c *Coordinator) apply(mutate func(s *dashboard.Snapshot) error, itemsChanged bool) (demo bool, err error) {
	c.mu.Lock()
	if c.live == nil {
		c.mu.Unlock()
		return false, ErrSessionNotReady
	}
	if err := mutate(c.live); err != nil {
		c.mu.Unlock()
		return false, err
	}
	demo = c.source == SourceDemo
	snap := c.live.Clone()
	valid := c.live.ItemIDs()
	c.mu.Unlock()

	if !demo {
		if err := c.cache.Put(c.user, snap); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		}
	}
	if itemsChanged {
		c.prune(valid)
	}
	c.notify()
	return demo, nil
}

// TogglePin flips an item's pinned flag.
func (c *Coordinator) TogglePin(id string) error {
	return c.applyDebounced(func(s *dashboard.Snapshot) error {
		it := s.ItemByID(id)
		if it == nil {
			return fmt.Errorf("%w: %s", ErrUnknownItem, id)
		}
		it.IsPinned = !it.IsPinned
		return nil
	}, false)
}

// DuplicateItem clones an item under a new id and timestamp, unpinned,
// placed directly after the original.
func (c *Coordinator) DuplicateItem(id string) (string, error) {
	newID := uuid.NewString()
	err := c.applyDebounced(func(s *dashboard.Snapshot) error {
		for i := range s.Items {
			if s.Items[i].ID != id {
				continue
			}
			dup := s.Clone().Items[i]
			dup.ID = newID
			dup.Title = dup.Title + " (copy)"
			dup.IsPinned = false
			dup.CreatedAt = time.Now().UTC().Format(time.RFC3339)
			s.Items = append(s.Items[:i+1], append([]dashboard.Item{dup}, s.Items[i+1:]...)...)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}, true)
	if err != nil {
		return "", err
	}
	return newID, nil
}

// AddItem prepends a new saved query. An empty folderID targets the
// first folder.
func (c *Coordinator) AddItem(title, text, folderID string) (dashboard.Item, error) {
	var added dashboard.Item
	err := c.applyDebounced(func(s *dashboard.Snapshot) error {
		folder := s.FolderByID(folderID)
		if folder == nil {
			if folderID != "" {
				return fmt.Errorf("%w: %s", ErrUnknownFolder, folderID)
			}
			if len(s.Folders) == 0 {
				return ErrSessionNotReady
			}
			folder = &s.Folders[0]
		}
		added = dashboard.Item{
			ID:        uuid.NewString(),
			Title:     title,
			Text:      text,
			FolderID:  folder.ID,
			Category:  folder.Name,
			ChartType: dashboard.ChartBar,
			Metrics:   dashboard.DefaultMetrics(nil),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		s.Items = append([]dashboard.Item{added}, s.Items...)
		return nil
	}, true)
	if err != nil {
		return dashboard.Item{}, err
	}
	return added, nil
}

// MoveItemToFolder reassigns an item's home folder and keeps the
// denormalized category in sync.
func (c *Coordinator) MoveItemToFolder(itemID, folderID string) error {
	return c.applyDebounced(func(s *dashboard.Snapshot) error {
		it := s.ItemByID(itemID)
		if it == nil {
			return fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
		}
		folder := s.FolderByID(folderID)
		if folder == nil {
			return fmt.Errorf("%w: %s", ErrUnknownFolder, folderID)
		}
		it.FolderID = folder.ID
		it.Category = folder.Name
		return nil
	}, false)
}

// CreateFolder adds a folder with the next palette tone. The write is
// immediate and its failure is surfaced.
func (c *Coordinator) CreateFolder(ctx context.Context, name string) (dashboard.Folder, error) {
	var created dashboard.Folder
	err := c.applyImmediate(ctx, func(s *dashboard.Snapshot) error {
		if err := validateFolderName(s, name, ""); err != nil {
			return err
		}
		created = dashboard.Folder{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(name),
			Tone:      dashboard.ToneAt(len(s.Folders)),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		s.Folders = append(s.Folders, created)
		return nil
	}, false)
	if err != nil {
		return dashboard.Folder{}, err
	}
	return created, nil
}

// RenameFolder renames a folder and rewrites members' categories.
func (c *Coordinator) RenameFolder(ctx context.Context, id, name string) error {
	return c.applyImmediate(ctx, func(s *dashboard.Snapshot) error {
		folder := s.FolderByID(id)
		if folder == nil {
			return fmt.Errorf("%w: %s", ErrUnknownFolder, id)
		}
		if err := validateFolderName(s, name, id); err != nil {
			return err
		}
		folder.Name = strings.TrimSpace(name)
		for i := range s.Items {
			if s.Items[i].FolderID == id {
				s.Items[i].Category = folder.Name
			}
		}
		return nil
	}, false)
}

// DeleteFolder removes a folder, reassigning member items to the first
// remaining folder. The sole remaining folder cannot be deleted.
func (c *Coordinator) DeleteFolder(ctx context.Context, id string) error {
	return c.applyImmediate(ctx, func(s *dashboard.Snapshot) error {
		if len(s.Folders) <= 1 {
			return ErrLastFolder
		}
		idx := -1
		for i := range s.Folders {
			if s.Folders[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownFolder, id)
		}
		s.Folders = append(s.Folders[:idx], s.Folders[idx+1:]...)
		fallback := s.Folders[0]
		for i := range s.Items {
			if s.Items[i].FolderID == id {
				s.Items[i].FolderID = fallback.ID
				s.Items[i].Category = fallback.Name
			}
		}
		return nil
	}, false)
}

// DeleteItems removes items optimistically before network
// confirmation, then awaits an immediate persist. On write failure it
// attempts a fresh authoritative re-fetch to self-heal; only if that
// also fails does it restore the exact pre-mutation snapshot. Deletion
// is the only mutation with a rollback path because it is destructive.
func (c *Coordinator) DeleteItems(ctx context.Context, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	c.mu.Lock()
	if c.live == nil {
		c.mu.Unlock()
		return ErrSessionNotReady
	}
	demo := c.source == SourceDemo
	pre := c.live.Clone()
	kept := c.live.Items[:0:0]
	for _, it := range c.live.Items {
		if _, gone := drop[it.ID]; !gone {
			kept = append(kept, it)
		}
	}
	c.live.Items = kept
	snap := c.live.Clone()
	valid := c.live.ItemIDs()
	c.mu.Unlock()

	if demo {
		c.prune(valid)
		c.notify()
		return nil
	}

	if err := c.cache.Put(c.user, snap); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
	c.prune(valid)
	c.notify()

	err := c.persist(ctx, snap)
	if err == nil {
		return nil
	}
	c.logger.Warn("delete persist failed, attempting read-repair", "error", err)

	if _, ferr := c.Reconcile(ctx); ferr == nil {
		// The server answered: whatever it holds is the truth now.
		return err
	}

	c.mu.Lock()
	c.live = pre
	restored := c.live.Clone()
	valid = c.live.ItemIDs()
	c.mu.Unlock()
	if cerr := c.cache.Put(c.user, restored); cerr != nil {
		c.logger.Warn("cache write failed", "error", cerr)
	}
	c.prune(valid)
	c.notify()
	return err
}

func validateFolderName(s *dashboard.Snapshot, name, excludeID string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyFolderName
	}
	for i := range s.Folders {
		if s.Folders[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(s.Folders[i].Name, trimmed) {
			return fmt.Errorf("%w: %s", ErrDuplicateFolderName, trimmed)
		}
	}
	return nil
}
