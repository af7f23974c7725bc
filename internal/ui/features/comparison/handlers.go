// Package comparison exposes the side-by-side comparison session over
// the gateway's JSON API.
package comparison

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/querydeck/querydeck/internal/dashboard"
	"github.com/querydeck/querydeck/internal/ui/features/common"
	"github.com/querydeck/querydeck/internal/ui/state"
)

// Handlers serves the comparison feature endpoints.
type Handlers struct {
	registry     *state.Registry
	sessionStore sessions.Store
	defaultUser  string
}

// NewHandlers creates the comparison feature handlers.
func NewHandlers(registry *state.Registry, sessionStore sessions.Store, defaultUser string) *Handlers {
	return &Handlers{registry: registry, sessionStore: sessionStore, defaultUser: defaultUser}
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *state.Session {
	user := common.ResolveUser(w, r, h.sessionStore, h.defaultUser)
	return h.registry.Acquire(user)
}

type idRequest struct {
	ID string `json:"id"`
}

type reorderRequest struct {
	DragID string `json:"dragId"`
	DropID string `json:"dropId"`
}

type runRequest struct {
	IDs []string `json:"ids"`
}

type viewResponse struct {
	Selected []string                  `json:"selected"`
	Visible  map[string]bool           `json:"visible"`
	Results  map[string]*compareResult `json:"results"`
}

type compareResult struct {
	Loading bool     `json:"loading"`
	Error   string   `json:"error,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Records [][]any  `json:"records,omitempty"`
}

// Get returns the full comparison view.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	common.WriteJSON(w, http.StatusOK, buildView(sess))
}

// Select adds an item to the comparison; the fourth attempt is
// rejected with feedback, never silently dropped.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := common.DecodeBody(r, &req); err != nil || req.ID == "" {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	if err := sess.Compare.Select(req.ID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, buildView(sess))
}

// Deselect removes an item from the comparison.
func (h *Handlers) Deselect(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	sess.Compare.Deselect(req.ID)
	common.WriteJSON(w, http.StatusOK, buildView(sess))
}

// Reorder splices the dragged item to the drop target's position.
func (h *Handlers) Reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	sess.Compare.Reorder(req.DragID, req.DropID)
	common.WriteJSON(w, http.StatusOK, buildView(sess))
}

// ToggleVisibility hides or shows one comparison pane without
// deselecting it.
func (h *Handlers) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	sess.Compare.ToggleVisible(req.ID)
	common.WriteJSON(w, http.StatusOK, buildView(sess))
}

// Run derives comparison tables from the selected items' hydrated
// previews. No query execution happens; items without a preview get a
// per-id error while the rest render.
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	ids := req.IDs
	if len(ids) == 0 {
		ids = sess.Compare.Selected()
	}
	sess.Compare.Execute(ids, func(id string) *dashboard.Item {
		return sess.Coord.Item(id)
	})
	common.WriteJSON(w, http.StatusOK, buildView(sess))
}

func buildView(sess *state.Session) viewResponse {
	selected := sess.Compare.Selected()
	view := viewResponse{
		Selected: selected,
		Visible:  make(map[string]bool, len(selected)),
		Results:  map[string]*compareResult{},
	}
	for _, id := range selected {
		view.Visible[id] = sess.Compare.Visible(id)
	}
	for id, res := range sess.Compare.Results() {
		out := &compareResult{Loading: res.Loading, Error: res.Error}
		if res.Data != nil {
			out.Columns = res.Data.Columns
			out.Records = res.Data.Records
		}
		view.Results[id] = out
	}
	return view
}
