package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredash "github.com/querydeck/querydeck/internal/dashboard"
	"github.com/querydeck/querydeck/internal/ui/features"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t, features.SeedSnapshot(t, "", ""))
	handlers := NewHandlers(fixture.Registry, fixture.SessionStore, "default")
	fixture.Acquire(t, "default")
	return handlers, fixture
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestGetDashboard(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		State    string              `json:"state"`
		Source   string              `json:"source"`
		Snapshot *coredash.Snapshot  `json:"snapshot"`
	}
	decodeJSON(t, rec, &view)
	assert.Equal(t, "idle", view.State)
	assert.Equal(t, "fresh", view.Source)
	require.NotNil(t, view.Snapshot)
	assert.Len(t, view.Snapshot.Items, 2)
	assert.Len(t, view.Snapshot.Folders, 2)
}

func TestGetDashboard_UserQueryParamSwitchesSession(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?user=alice", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"), "explicit user is remembered in the cookie")
	assert.Equal(t, "alice", fixture.Registry.Acquire("alice").Coord.User())
}

func TestRefresh_DegradesGracefully(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Backend.SetFetchErr(errors.New("server down"))

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "a failed refresh still answers with the degraded view")
	var view struct {
		State  string `json:"state"`
		Notice string `json:"notice"`
	}
	decodeJSON(t, rec, &view)
	assert.Equal(t, "degraded", view.State)
	assert.NotEmpty(t, view.Notice)
}

func TestAddItem(t *testing.T) {
	h, _ := setupTestHandlers(t)

	body := `{"title": "New query", "text": "SELECT 1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.AddItem(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var item coredash.Item
	decodeJSON(t, rec, &item)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "f1", item.FolderID)
	assert.Len(t, item.Metrics, 3)
}

func TestAddItem_BadRequests(t *testing.T) {
	h, _ := setupTestHandlers(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"title": `, http.StatusBadRequest},
		{"unknown folder", `{"title": "x", "text": "SELECT 1", "folderId": "ghost"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.AddItem(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestTogglePin(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/q1/pin", nil)
	req = features.RequestWithPathParam(req, "id", "q1")
	rec := httptest.NewRecorder()
	h.TogglePin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fixture.Acquire(t, "default").Coord.Item("q1").IsPinned)
}

func TestTogglePin_UnknownItem(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/ghost/pin", nil)
	req = features.RequestWithPathParam(req, "id", "ghost")
	rec := httptest.NewRecorder()
	h.TogglePin(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateItem(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/q1/duplicate", nil)
	req = features.RequestWithPathParam(req, "id", "q1")
	rec := httptest.NewRecorder()
	h.DuplicateItem(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	require.NotEmpty(t, resp["id"])

	dup := fixture.Acquire(t, "default").Coord.Item(resp["id"])
	require.NotNil(t, dup)
	assert.Equal(t, "Orders (copy)", dup.Title)
}

func TestMoveItem(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/q1/move", strings.NewReader(`{"folderId": "f2"}`))
	req = features.RequestWithPathParam(req, "id", "q1")
	rec := httptest.NewRecorder()
	h.MoveItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "f2", fixture.Acquire(t, "default").Coord.Item("q1").FolderID)
}

func TestDeleteItems(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/delete", strings.NewReader(`{"ids": ["q1"]}`))
	rec := httptest.NewRecorder()
	h.DeleteItems(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	sess := fixture.Acquire(t, "default")
	assert.Nil(t, sess.Coord.Item("q1"))
	assert.NotNil(t, sess.Coord.Item("q2"))
}

func TestDeleteItems_EmptyIDs(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items/delete", strings.NewReader(`{"ids": []}`))
	rec := httptest.NewRecorder()
	h.DeleteItems(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteItems_WriteFailureSurfaces(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Backend.SetSaveErr(errors.New("write refused"))
	fixture.Backend.SetFetchErr(errors.New("server down"))

	req := httptest.NewRequest(http.MethodPost, "/api/items/delete", strings.NewReader(`{"ids": ["q1"]}`))
	rec := httptest.NewRecorder()
	h.DeleteItems(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotNil(t, fixture.Acquire(t, "default").Coord.Item("q1"), "the delete rolled back")
}

func TestFolderLifecycle(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	// create
	req := httptest.NewRequest(http.MethodPost, "/api/folders", strings.NewReader(`{"name": "Marketing"}`))
	rec := httptest.NewRecorder()
	h.CreateFolder(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var folder coredash.Folder
	decodeJSON(t, rec, &folder)
	assert.Equal(t, "Marketing", folder.Name)

	// duplicate name rejected
	req = httptest.NewRequest(http.MethodPost, "/api/folders", strings.NewReader(`{"name": "marketing"}`))
	rec = httptest.NewRecorder()
	h.CreateFolder(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// rename
	req = httptest.NewRequest(http.MethodPatch, "/api/folders/"+folder.ID, strings.NewReader(`{"name": "Growth"}`))
	req = features.RequestWithPathParam(req, "id", folder.ID)
	rec = httptest.NewRecorder()
	h.RenameFolder(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// delete
	req = httptest.NewRequest(http.MethodDelete, "/api/folders/"+folder.ID, nil)
	req = features.RequestWithPathParam(req, "id", folder.ID)
	rec = httptest.NewRecorder()
	h.DeleteFolder(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	view := fixture.Acquire(t, "default").Coord.View()
	assert.Len(t, view.Snapshot.Folders, 2)
}

func TestDeleteFolder_LastFolderRejected(t *testing.T) {
	h, _ := setupTestHandlers(t)

	for _, id := range []string{"f2", "f1"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/folders/"+id, nil)
		req = features.RequestWithPathParam(req, "id", id)
		rec := httptest.NewRecorder()
		h.DeleteFolder(rec, req)
		if id == "f2" {
			require.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		}
	}
}

func TestItemStats(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/items/q1/stats", nil)
	req = features.RequestWithPathParam(req, "id", "q1")
	rec := httptest.NewRecorder()
	h.ItemStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Stats []coredash.StatRow `json:"stats"`
	}
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Stats, 2, "one row per preview column")
	assert.Equal(t, "region", resp.Stats[0].Column)
	total := resp.Stats[1]
	require.NotNil(t, total.Median)
	assert.Equal(t, 15.0, *total.Median)
}

func TestItemStats_UnknownItem(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/items/ghost/stats", nil)
	req = features.RequestWithPathParam(req, "id", "ghost")
	rec := httptest.NewRecorder()
	h.ItemStats(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemFigure(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/items/q1/figure", nil)
	req = features.RequestWithPathParam(req, "id", "q1")
	rec := httptest.NewRecorder()
	h.ItemFigure(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Figure *struct {
			Kind string `json:"kind"`
		} `json:"figure"`
	}
	decodeJSON(t, rec, &resp)
	require.NotNil(t, resp.Figure)
	assert.Equal(t, "synthesized", resp.Figure.Kind)
}

func TestItemFigure_NoPreviewIsNull(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/items/q2/figure", nil)
	req = features.RequestWithPathParam(req, "id", "q2")
	rec := httptest.NewRecorder()
	h.ItemFigure(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Nil(t, resp["figure"], "nothing renderable answers an explicit null")
}

func TestHydrateBundles(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Backend.Bundles["q2"] = coredash.RawRecord{"description": "hydrated"}

	req := httptest.NewRequest(http.MethodPost, "/api/bundles", strings.NewReader(`{"ids": ["q2"]}`))
	rec := httptest.NewRecorder()
	h.HydrateBundles(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items map[string]coredash.Item `json:"items"`
	}
	decodeJSON(t, rec, &resp)
	require.Contains(t, resp.Items, "q2")
	assert.Equal(t, "hydrated", resp.Items["q2"].Description)
}
