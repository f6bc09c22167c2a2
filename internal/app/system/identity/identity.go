// internal/app/system/identity/identity.go

// Package identity resolves the calling user. Authentication itself is
// external: an upstream proxy verifies credentials and forwards the user
// ID in a trusted header. This package validates the header and puts the
// ID on the request context; everything downstream reads it from there.
package identity

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHeader carries the authenticated user's ID, set by the upstream
// auth proxy. Requests arriving without it (or with a malformed value)
// are rejected before any handler runs.
const UserHeader = "X-Studyhub-User"

type ctxKey struct{}

// RequireUser is middleware that extracts the user ID from UserHeader
// and fails closed: no header or a malformed ObjectID yields 401, so no
// handler ever sees an anonymous or corrupt identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserHeader)
		if raw == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		userID, err := primitive.ObjectIDFromHex(raw)
		if err != nil || userID.IsZero() {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying the user ID. Tests use it to
// impersonate a caller without going through the middleware.
func WithUserID(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// CurrentUserID returns the authenticated user's ID from the request
// context. ok is false when the request did not pass through
// RequireUser.
func CurrentUserID(r *http.Request) (primitive.ObjectID, bool) {
	return FromContext(r.Context())
}

// FromContext returns the user ID stored on the context.
func FromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(ctxKey{}).(primitive.ObjectID)
	if !ok || id.IsZero() {
		return primitive.NilObjectID, false
	}
	return id, true
}
