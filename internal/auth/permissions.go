package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/storage"
)

const (
	LevelViewer    = 1
	LevelModerator = 2
	LevelAdmin     = 3
)

// PermissionSet is the fixed capability bundle attached to a role.
type PermissionSet struct {
	CanUpload         bool `json:"canUpload"`
	CanDelete         bool `json:"canDelete"`
	CanEdit           bool `json:"canEdit"`
	CanDownload       bool `json:"canDownload"`
	CanManageUsers    bool `json:"canManageUsers"`
	CanViewAllContent bool `json:"canViewAllContent"`
	Level             int  `json:"level"`
}

// Resolve is total over roles: anything unrecognized gets the viewer set.
func Resolve(role models.Role) PermissionSet {
	switch role {
	case models.RoleAdmin:
		return PermissionSet{
			CanUpload: true, CanDelete: true, CanEdit: true, CanDownload: true,
			CanManageUsers: true, CanViewAllContent: true, Level: LevelAdmin,
		}
	case models.RoleModerator:
		return PermissionSet{
			CanUpload: true, CanEdit: true, CanDownload: true,
			CanViewAllContent: true, Level: LevelModerator,
		}
	default:
		return PermissionSet{CanDownload: true, CanViewAllContent: true, Level: LevelViewer}
	}
}

// AtLeast reports whether the set's level reaches min.
func (p PermissionSet) AtLeast(min int) bool {
	return p.Level >= min
}

// Resolver exposes the two ways of deciding a caller's permissions.
//
// ResolveFromClaims trusts the role baked into the token. It needs no I/O but
// may be up to SessionTTL stale. ResolveFromStore re-reads the user's role and
// is mandatory before destructive operations (delete, user management).
type Resolver struct {
	users storage.UserStore
}

func NewResolver(users storage.UserStore) *Resolver {
	return &Resolver{users: users}
}

// ResolveFromClaims is the fast path for low-risk reads and edits.
func (r *Resolver) ResolveFromClaims(claims models.Claims) PermissionSet {
	return Resolve(claims.Role)
}

// ResolveFromStore loads the authoritative role. A user that no longer exists
// is denied rather than reported as missing.
func (r *Resolver) ResolveFromStore(ctx context.Context, userID int64) (models.Role, PermissionSet, error) {
	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", PermissionSet{}, fmt.Errorf("user %d no longer exists: %w", userID, apperr.ErrAuthorizationDenied)
		}
		return "", PermissionSet{}, fmt.Errorf("load role: %w: %w", apperr.ErrPersistence, err)
	}
	role := models.ParseRole(string(user.Role))
	return role, Resolve(role), nil
}
