package auth

import (
	"context"

	"github.com/google/uuid"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

const (
	RoleBrand      = "brand"
	RoleCreator    = "creator"
	RoleInfluencer = "influencer"
)

// Identity is the authenticated account. A general account acts as listing owner
// on its own listings and as brand everywhere else.
type Identity struct {
	AccountID uuid.UUID
	Role      string
}

// CanSponsor reports whether the account may express interest in listings.
// Creator and influencer accounts only publish listings.
func (i Identity) CanSponsor() bool {
	switch i.Role {
	case RoleCreator, RoleInfluencer:
		return false
	default:
		return true
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || identity.AccountID == uuid.Nil {
		return Identity{}, false
	}
	return identity, true
}
