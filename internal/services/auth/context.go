package auth

import "context"

type ctxKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID    int64
	SessionID string
	Role      string
}

func (c Claims) Identity() Identity {
	return Identity{UserID: c.UserID, SessionID: c.SessionID, Role: c.Role}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || identity.UserID <= 0 {
		return Identity{}, false
	}
	return identity, true
}
