package models

import "strings"

// Role is the coarse access level attached to every user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleViewer    Role = "viewer"
)

// ParseRole normalizes a stored or claimed role string. Anything unrecognized
// becomes RoleViewer, the most restrictive role.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleModerator:
		return RoleModerator
	default:
		return RoleViewer
	}
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleViewer
}

func (r Role) String() string {
	return string(r)
}
