// Package session holds the signed-in identity of a request and a per-owner
// cache of the records loaded for that owner.
package session

import "context"

type contextKey string

const identityKey contextKey = "session_identity"

// Identity is the authenticated user of a request
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored in ctx
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
