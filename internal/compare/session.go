// Package compare holds the transient side-by-side comparison state:
// an ordered selection of up to three items whose hydrated previews are
// rendered as independently loading result panes.
package compare

import (
	"errors"
	"fmt"
	"sync"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// MaxSelection caps how many items can be compared at once.
const MaxSelection = 3

// ErrSelectionFull is returned when a selection attempt would exceed
// MaxSelection. The caller surfaces it; the attempt is never silently
// dropped.
var ErrSelectionFull = errors.New("comparison selection is full")

// Data is the tabular result derived for one compared item.
type Data struct {
	Columns []string `json:"columns"`
	Records [][]any  `json:"records"`
}

// Result tracks the per-item comparison state. Loading, error and data
// are independent per id so partial results render as soon as they are
// available.
type Result struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Data    *Data  `json:"data,omitempty"`
}

// Session is the comparison state for one dashboard session. It is
// never persisted.
type Session struct {
	mu       sync.Mutex
	selected []string
	hidden   map[string]struct{}
	results  map[string]*Result
}

// NewSession returns an empty comparison session.
func NewSession() *Session {
	return &Session{
		hidden:  map[string]struct{}{},
		results: map[string]*Result{},
	}
}

// Select adds an item id to the selection. Selecting an already
// selected id is a no-op; a fourth distinct id is rejected.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sel := range s.selected {
		if sel == id {
			return nil
		}
	}
	if len(s.selected) >= MaxSelection {
		return fmt.Errorf("%w: limit is %d items", ErrSelectionFull, MaxSelection)
	}
	s.selected = append(s.selected, id)
	return nil
}

// Deselect removes an id and its bookkeeping.
func (s *Session) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

func (s *Session) remove(id string) {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			break
		}
	}
	delete(s.hidden, id)
	delete(s.results, id)
}

// Selected returns the selection in display order.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// Reorder moves dragID to dropID's position, splicing the rest of the
// selection around it. Unknown ids leave the order untouched.
func (s *Session) Reorder(dragID, dropID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := -1, -1
	for i, sel := range s.selected {
		switch sel {
		case dragID:
			from = i
		case dropID:
			to = i
		}
	}
	if from < 0 || to < 0 || from == to {
		return
	}
	id := s.selected[from]
	s.selected = append(s.selected[:from], s.selected[from+1:]...)
	s.selected = append(s.selected[:to], append([]string{id}, s.selected[to:]...)...)
}

// ToggleVisible hides or shows an item pane without deselecting it.
func (s *Session) ToggleVisible(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, hidden := s.hidden[id]; hidden {
		delete(s.hidden, id)
	} else {
		s.hidden[id] = struct{}{}
	}
}

// Visible reports whether an item pane is currently shown.
func (s *Session) Visible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hidden := s.hidden[id]
	return !hidden
}

// Execute derives the comparison table for every requested id from the
// item's already-hydrated preview. No query execution happens here: an
// item lacking a preview gets a per-id error instead of blocking the
// others. Ids outside the current selection are ignored.
func (s *Session) Execute(ids []string, lookup func(id string) *dashboard.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := map[string]struct{}{}
	for _, id := range s.selected {
		selected[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := selected[id]; !ok {
			continue
		}
		s.results[id] = resultFor(lookup(id))
	}
}

func resultFor(item *dashboard.Item) *Result {
	if item == nil {
		return &Result{Error: "query is no longer on the dashboard"}
	}
	if item.Preview == nil || len(item.Preview.Columns) == 0 {
		return &Result{Error: "no cached result rows for this query"}
	}
	return &Result{
		Data: &Data{
			Columns: append([]string(nil), item.Preview.Columns...),
			Records: item.Preview.Rows,
		},
	}
}

// Results returns the per-id results keyed by item id, in no
// particular order.
func (s *Session) Results() map[string]*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Result, len(s.results))
	for id, r := range s.results {
		out[id] = r
	}
	return out
}

// Prune drops selection, visibility and result bookkeeping for any id
// not present in the live item set, so stale ids never linger after
// items change.
func (s *Session) Prune(valid map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range append([]string(nil), s.selected...) {
		if _, ok := valid[id]; !ok {
			s.remove(id)
		}
	}
	for id := range s.results {
		if _, ok := valid[id]; !ok {
			delete(s.results, id)
		}
	}
	for id := range s.hidden {
		if _, ok := valid[id]; !ok {
			delete(s.hidden, id)
		}
	}
}
