package middleware

import (
	"context"
	"net/http"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ActorContextKey is the context key for the acting principal
	ActorContextKey ContextKey = "actor"

	// ActorHeader carries the acting principal's identifier. Every audit
	// entry and createdBy/updatedBy field traces back to it.
	ActorHeader = "X-Actor-ID"
)

// Actor extracts the acting principal from the request header and stores it
// in the context. Requests without an actor still pass; mutating use cases
// reject them with a validation error.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(ActorHeader)
		if actor != "" {
			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext extracts the acting principal from context.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorContextKey).(string)
	return actor
}
