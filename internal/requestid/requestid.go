// Package requestid carries a per-request identifier through context so
// logs, action outcomes and the action log can be correlated.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to accept and echo request ids.
const Header = "X-Request-ID"

type ctxKey struct{}

// WithRequestID returns a context with the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from context, or "" when none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Ensure returns incoming if it is a well-formed UUID, otherwise a new one.
// Client-supplied ids are accepted so callers can correlate retries.
func Ensure(incoming string) string {
	if incoming != "" {
		if u, err := uuid.Parse(incoming); err == nil {
			return u.String()
		}
	}
	return uuid.New().String()
}

// New generates a new request ID and returns the enriched context and ID.
func New(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	return WithRequestID(ctx, id), id
}
