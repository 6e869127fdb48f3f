package session

import (
	"context"
)

type contextKey struct{}

// WithManager attaches a visitor's manager to ctx.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the manager attached by the session middleware.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(contextKey{}).(*Manager)
	return m, ok && m != nil
}

// TokenFromContext is the API client's token source: the persisted token of
// whichever visitor the outgoing call is made for.
func TokenFromContext(ctx context.Context) string {
	m, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return m.Token(ctx)
}
