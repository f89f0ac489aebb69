// Package ctxutil provides context utilities that can be safely
// imported anywhere. This package has no internal dependencies to
// avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting identity used in audit
// entries.
type ActorKey struct{}

// WithActor returns a context with the actor identity embedded.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actor)
}

// ActorFromContext returns the actor from context, or "operator" if
// not set.
func ActorFromContext(ctx context.Context) string {
	if v := ctx.Value(ActorKey{}); v != nil {
		return v.(string)
	}
	return "operator"
}
