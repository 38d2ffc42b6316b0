package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/models"
)

func TestResolve(t *testing.T) {
	admin := Resolve(models.RoleAdmin)
	assert.Equal(t, PermissionSet{
		CanUpload: true, CanDelete: true, CanEdit: true, CanDownload: true,
		CanManageUsers: true, CanViewAllContent: true, Level: 3,
	}, admin)

	mod := Resolve(models.RoleModerator)
	assert.True(t, mod.CanUpload)
	assert.True(t, mod.CanEdit)
	assert.False(t, mod.CanDelete)
	assert.False(t, mod.CanManageUsers)
	assert.Equal(t, 2, mod.Level)

	viewer := Resolve(models.RoleViewer)
	assert.Equal(t, PermissionSet{CanDownload: true, CanViewAllContent: true, Level: 1}, viewer)

	assert.Equal(t, viewer, Resolve(models.Role("root")))
	assert.Equal(t, viewer, Resolve(""))
}

func TestLevelsAreMonotonic(t *testing.T) {
	roles := []models.Role{models.RoleViewer, models.RoleModerator, models.RoleAdmin}
	for i := 1; i < len(roles); i++ {
		lower, higher := Resolve(roles[i-1]), Resolve(roles[i])
		assert.Greater(t, higher.Level, lower.Level)
		if lower.CanUpload {
			assert.True(t, higher.CanUpload)
		}
		if lower.CanEdit {
			assert.True(t, higher.CanEdit)
		}
		if lower.CanDownload {
			assert.True(t, higher.CanDownload)
		}
	}
}

func TestResolverFromStoreSeesDemotion(t *testing.T) {
	users := newFakeUsers(models.User{ID: 7, Username: "bob", Role: models.RoleAdmin})
	resolver := NewResolver(users)
	claims := models.Claims{UserID: 7, Name: "bob", Role: models.RoleAdmin}

	users.setRole("bob", models.RoleViewer)

	assert.True(t, resolver.ResolveFromClaims(claims).CanDelete)

	role, perms, err := resolver.ResolveFromStore(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, role)
	assert.False(t, perms.CanDelete)
}

func TestResolverFromStoreMissingUser(t *testing.T) {
	_, _, err := NewResolver(newFakeUsers()).ResolveFromStore(context.Background(), 99)
	assert.ErrorIs(t, err, apperr.ErrAuthorizationDenied)
}

func TestResolverFromStoreFailure(t *testing.T) {
	users := newFakeUsers()
	users.err = errBoom
	_, _, err := NewResolver(users).ResolveFromStore(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrPersistence)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	want := Identity{Claims: models.Claims{UserID: 3, Role: models.RoleViewer}, Permissions: Resolve(models.RoleViewer)}
	got, ok := IdentityFrom(WithIdentity(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}
