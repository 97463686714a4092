package authctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ProviderContextKey is the request context key for the authenticated provider.
type ProviderContextKey struct{}

// Identity is the resolved authenticated party for a request.
type Identity struct {
	ProviderID snowflake.ID
	Role       string
}

// WithIdentity stores the authenticated identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ProviderContextKey{}, id)
}

// IdentityFromContext returns the authenticated identity from context, if set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ProviderContextKey{}).(Identity)
	if !ok || id.ProviderID == 0 {
		return Identity{}, false
	}
	return id, true
}

// ProviderIDFromContext returns the authenticated provider ID from context, if set.
func ProviderIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return 0, false
	}
	return id.ProviderID, true
}

// RoleFromContext returns the authenticated provider's role, lowercased.
func RoleFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || strings.TrimSpace(id.Role) == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(id.Role)), true
}
