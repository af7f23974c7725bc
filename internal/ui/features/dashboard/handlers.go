package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/querydeck/querydeck/internal/chart"
	"github.com/querydeck/querydeck/internal/stats"
	"github.com/querydeck/querydeck/internal/ui/features/common"
	"github.com/querydeck/querydeck/internal/ui/state"
)

// Handlers serves the dashboard feature endpoints.
type Handlers struct {
	registry     *state.Registry
	sessionStore sessions.Store
	defaultUser  string
}

// NewHandlers creates the dashboard feature handlers.
func NewHandlers(registry *state.Registry, sessionStore sessions.Store, defaultUser string) *Handlers {
	return &Handlers{registry: registry, sessionStore: sessionStore, defaultUser: defaultUser}
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) *state.Session {
	user := common.ResolveUser(w, r, h.sessionStore, h.defaultUser)
	return h.registry.Acquire(user)
}

// GetDashboard returns the current renderable session view.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// Refresh forces a synchronous reconcile with the server.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if _, err := sess.Coord.Reconcile(r.Context()); err != nil {
		// Non-fatal: the view degrades to cache or demo data.
		common.WriteJSON(w, http.StatusOK, sess.Coord.View())
		return
	}
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// AddItem creates a new saved query.
func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	item, err := sess.Coord.AddItem(req.Title, req.Text, req.FolderID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, item)
}

// TogglePin flips an item's pinned state.
func (h *Handlers) TogglePin(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := sess.Coord.TogglePin(chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// DuplicateItem copies an item under a new id.
func (h *Handlers) DuplicateItem(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	newID, err := sess.Coord.DuplicateItem(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]string{"id": newID})
}

// MoveItem reassigns an item's folder.
func (h *Handlers) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req moveItemRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	if err := sess.Coord.MoveItemToFolder(chi.URLParam(r, "id"), req.FolderID); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// DeleteItems removes items optimistically with an immediate persist;
// a failed write surfaces after read-repair or rollback.
func (h *Handlers) DeleteItems(w http.ResponseWriter, r *http.Request) {
	var req deleteItemsRequest
	if err := common.DecodeBody(r, &req); err != nil || len(req.IDs) == 0 {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	if err := sess.Coord.DeleteItems(r.Context(), req.IDs); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// CreateFolder adds a folder.
func (h *Handlers) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	folder, err := sess.Coord.CreateFolder(r.Context(), req.Name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, folder)
}

// RenameFolder renames a folder.
func (h *Handlers) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	if err := sess.Coord.RenameFolder(r.Context(), chi.URLParam(r, "id"), req.Name); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// DeleteFolder removes a folder, reassigning members to the fallback.
func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if err := sess.Coord.DeleteFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sess.Coord.View())
}

// HydrateBundles fetches heavy payloads for the listed items and
// returns the merged items. On upstream failure the caller keeps
// whatever it already had.
func (h *Handlers) HydrateBundles(w http.ResponseWriter, r *http.Request) {
	var req bundlesRequest
	if err := common.DecodeBody(r, &req); err != nil {
		common.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	sess := h.session(w, r)
	items, err := sess.Coord.HydrateBundles(r.Context(), req.IDs)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ItemStats returns per-column descriptive statistics for one item,
// computing them from preview rows when the server supplied none.
func (h *Handlers) ItemStats(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	item := sess.Coord.Item(chi.URLParam(r, "id"))
	if item == nil {
		common.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown item"})
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{"stats": stats.Compute(item)})
}

// ItemFigure resolves a renderable figure for one item. A null result
// tells the client to render an explicit empty state.
func (h *Handlers) ItemFigure(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	item := sess.Coord.Item(chi.URLParam(r, "id"))
	if item == nil {
		common.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown item"})
		return
	}
	selected := item.PrimaryChart
	if chartID := r.URL.Query().Get("chart"); chartID != "" {
		for i := range item.RecommendedCharts {
			if item.RecommendedCharts[i].ID == chartID {
				selected = &item.RecommendedCharts[i]
				break
			}
		}
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{"figure": chart.Resolve(item, selected)})
}
