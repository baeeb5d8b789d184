package postgres

import (
	"context"
	"errors"

	jobDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/job"
	rbacDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/rbac"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ rbac.RepositoryAPI = (*Repository)(nil)

func (r *Repository) ListRoles(ctx context.Context) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *Repository) GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) GetRoleByName(ctx context.Context, name string) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *Repository) CreateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *Repository) UpdateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	return r.db.WithContext(ctx).Model(role).Update("name", role.Name).Error
}

func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&rbacDatamodel.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&userDatamodel.User{}).
			Where("role_id = ?", id).
			Update("role_id", rbac.DefaultRoleID).Error; err != nil {
			return err
		}
		return tx.Delete(&rbacDatamodel.Role{}, id).Error
	})
}

func (r *Repository) ListPermissions(ctx context.Context) ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&perms).Error
	return perms, err
}

func (r *Repository) GetPermissionByName(ctx context.Context, name string) (*rbacDatamodel.Permission, error) {
	var p rbacDatamodel.Permission
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePermission(ctx context.Context, p *rbacDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) FindPermissions(ctx context.Context, ids []int64) ([]*rbacDatamodel.Permission, error) {
	var perms []*rbacDatamodel.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&perms).Error
	return perms, err
}

// AddRolePermissions inserts the missing edges. Existing ones are left
// alone by the unique (role_id, permission_id) index.
func (r *Repository) AddRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if len(permissionIDs) == 0 {
		return nil
	}
	edges := make([]rbacDatamodel.RolePermission, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		edges = append(edges, rbacDatamodel.RolePermission{RoleID: roleID, PermissionID: pid})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edges).Error
}

func (r *Repository) RemoveRolePermission(ctx context.Context, roleID, permissionID int64) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&rbacDatamodel.RolePermission{}).Error
}

func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) ExistingJobIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found := []int64{}
	if len(ids) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).Model(&jobDatamodel.Job{}).Where("id IN ?", ids).Pluck("id", &found).Error
	return found, err
}

func (r *Repository) ReplaceUserScope(ctx context.Context, userID int64, jobIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&rbacDatamodel.UserScope{}).Error; err != nil {
			return err
		}
		if len(jobIDs) == 0 {
			return nil
		}
		rows := make([]rbacDatamodel.UserScope, 0, len(jobIDs))
		for _, id := range jobIDs {
			rows = append(rows, rbacDatamodel.UserScope{UserID: userID, JobID: id})
		}
		return tx.Create(&rows).Error
	})
}
