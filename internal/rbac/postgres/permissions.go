package postgres

import (
	"context"

	"github.com/frahmantamala/recruitment/internal/rbac"
	"github.com/jmoiron/sqlx"
)

const (
	rolePermissionNamesQuery = `
SELECT p.name
FROM roles_permissions rp
JOIN permissions p ON p.id = rp.permission_id
WHERE rp.role_id = ?`

	allRolePermissionNamesQuery = `
SELECT rp.role_id, p.name
FROM roles_permissions rp
JOIN permissions p ON p.id = rp.permission_id
ORDER BY rp.role_id, p.name`

	assignedScopeQuery = `
SELECT job_id
FROM user_scopes
WHERE user_id = ?
ORDER BY job_id`
)

// PermissionReader runs the hot read path of authorization on plain SQL.
type PermissionReader struct {
	db *sqlx.DB
}

func NewPermissionReader(db *sqlx.DB) *PermissionReader {
	return &PermissionReader{db: db}
}

var (
	_ rbac.PermissionReader = (*PermissionReader)(nil)
	_ rbac.GrantReader      = (*PermissionReader)(nil)
	_ rbac.ScopeStore       = (*PermissionReader)(nil)
)

func (r *PermissionReader) RolePermissionNames(ctx context.Context, roleID int64) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, r.db.Rebind(rolePermissionNamesQuery), roleID); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *PermissionReader) AllRolePermissionNames(ctx context.Context) ([]rbac.RolePermissionName, error) {
	var rows []rbac.RolePermissionName
	if err := r.db.SelectContext(ctx, &rows, allRolePermissionNamesQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PermissionReader) AssignedScope(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(assignedScopeQuery), userID); err != nil {
		return nil, err
	}
	return ids, nil
}
