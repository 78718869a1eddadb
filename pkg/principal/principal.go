package principal

import (
	"context"
)

// Header carries the acting principal on incoming requests. The gateway in
// front of this service is expected to set it after authenticating the call.
const Header = "X-Acting-Principal"

// Anonymous is used when no principal was supplied.
const Anonymous = "anonymous"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the acting principal.
func NewContext(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ctxKey{}, principal)
}

// FromContext extracts the acting principal from ctx. It returns Anonymous
// when none was set.
func FromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ctxKey{}).(string); ok && p != "" {
		return p
	}
	return Anonymous
}
