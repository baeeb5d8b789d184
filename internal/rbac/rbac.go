package rbac

import (
	rbacDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/rbac"
)

// DefaultRoleID receives the users of a deleted role. It cannot be deleted.
const DefaultRoleID int64 = 0

// Permission names checked by routes.
const (
	PermCreateUser           = "CREATE_USER"
	PermUpdateUser           = "UPDATE_USER"
	PermDeleteUser           = "DELETE_USER"
	PermListAllUsers         = "LIST_ALL_USERS"
	PermCreateRole           = "CREATE_ROLE"
	PermUpdateRole           = "UPDATE_ROLE"
	PermDeleteRole           = "DELETE_ROLE"
	PermListAllRoles         = "LIST_ALL_ROLES"
	PermCreatePermission     = "CREATE_PERMISSION"
	PermAssignRolePermission = "ASSIGN_ROLE_PERMISSION"
	PermListAllPermissions   = "LIST_ALL_PERMISSIONS"
	PermViewUser             = "VIEW_USER"
	PermPostJob              = "POST_JOB"
	PermAssignScope          = "ASSIGN_SCOPE"
)

type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type Permission struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// RolePermissionName is one row of the role→permission-name join.
type RolePermissionName struct {
	RoleID int64  `db:"role_id"`
	Name   string `db:"name"`
}

func RoleFromDataModel(r *rbacDatamodel.Role, permissions []string) *Role {
	if permissions == nil {
		permissions = []string{}
	}
	return &Role{ID: r.ID, Name: r.Name, Permissions: permissions}
}

func PermissionFromDataModel(p *rbacDatamodel.Permission) Permission {
	return Permission{ID: p.ID, Name: p.Name, Category: p.Category}
}
