package identity

import "context"

// Identity is the authenticated caller as reported by the identity provider.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// IsAuthenticated reports whether the identity carries a user id.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != ""
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || !id.IsAuthenticated() {
		return Identity{}, false
	}

	return id, true
}
