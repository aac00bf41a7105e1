package handler

import (
	"context"
	"net/http"
)

// Type contextKey is a custom contextKey type, with the underlying type string.
// This is necessary to prevent name collisions with external packages.
type contextKey string

const sessionContextKey = contextKey("session")

// contextSetSession returns a new copy of the request with the console
// session id added to the context.
func (h *Handler) contextSetSession(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionContextKey, id)
	return r.WithContext(ctx)
}

// contextGetSession retrieves the console session id. It is empty when the
// session middleware did not run.
func (h *Handler) contextGetSession(r *http.Request) string {
	id, _ := r.Context().Value(sessionContextKey).(string)
	return id
}
