// Package identity holds the authenticated caller as seen by every layer
// after session resolution and permission flattening.
package identity

import "slices"

// Identity is the user behind a live session.
type Identity struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	// RoleID is nil while the user's role reference dangles.
	RoleID *int64 `json:"role_id"`
	Token  string `json:"-"`
}

// Principal is an Identity that passed authorization, with the flattened
// permission set of its role and, when a scope was checked, its assigned
// scope.
type Principal struct {
	Identity
	Permissions []string `json:"permissions"`
	Scope       []int64  `json:"scope,omitempty"`
}

func (p *Principal) HasPermission(permission string) bool {
	return slices.Contains(p.Permissions, permission)
}

func (p *Principal) InScope(id int64) bool {
	return slices.Contains(p.Scope, id)
}
