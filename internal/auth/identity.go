package auth

import (
	"context"

	"github.com/hongminglow/mediavault/internal/models"
)

// Identity is what the endpoint gate learned about the caller.
type Identity struct {
	Claims      models.Claims
	Permissions PermissionSet
}

type identityKey struct{}

// WithIdentity attaches an authorized caller to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
