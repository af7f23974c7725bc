// Package common holds helpers shared by the gateway feature packages:
// JSON responses, error mapping, and user-key resolution.
package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/querydeck/querydeck/internal/backend"
	"github.com/querydeck/querydeck/internal/compare"
	"github.com/querydeck/querydeck/internal/session"
)

const (
	sessionName = "querydeck"
	userKey     = "user"
)

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps an error to a status code and writes it as
// {"error": ...}. Validation failures come back as 422, unknown ids as
// 404, upstream write/read failures as 502.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownItem),
		errors.Is(err, session.ErrUnknownFolder):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmptyFolderName),
		errors.Is(err, session.ErrDuplicateFolderName),
		errors.Is(err, session.ErrLastFolder),
		errors.Is(err, compare.ErrSelectionFull):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSessionNotReady):
		return http.StatusConflict
	}
	var httpErr *backend.HTTPError
	if errors.As(err, &httpErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// DecodeBody decodes a JSON request body into v.
func DecodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ResolveUser picks the user key for a request: an explicit ?user=
// query value wins and is remembered in the cookie session; otherwise
// the cookie value, otherwise the configured default.
func ResolveUser(w http.ResponseWriter, r *http.Request, store sessions.Store, fallback string) string {
	sess, _ := store.Get(r, sessionName)
	if u := r.URL.Query().Get("user"); u != "" {
		if sess != nil {
			sess.Values[userKey] = u
			_ = sess.Save(r, w)
		}
		return u
	}
	if sess != nil {
		if u, ok := sess.Values[userKey].(string); ok && u != "" {
			return u
		}
	}
	return fallback
}
