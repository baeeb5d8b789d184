package rbac

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/frahmantamala/recruitment/internal"
	rbacDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/rbac"
	"github.com/frahmantamala/recruitment/internal/core/events"
)

type RepositoryAPI interface {
	ListRoles(ctx context.Context) ([]*rbacDatamodel.Role, error)
	GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*rbacDatamodel.Role, error)
	CreateRole(ctx context.Context, role *rbacDatamodel.Role) error
	UpdateRole(ctx context.Context, role *rbacDatamodel.Role) error
	// DeleteRole removes the role, its edges, and moves its users to
	// DefaultRoleID in one transaction.
	DeleteRole(ctx context.Context, id int64) error

	ListPermissions(ctx context.Context) ([]*rbacDatamodel.Permission, error)
	GetPermissionByName(ctx context.Context, name string) (*rbacDatamodel.Permission, error)
	CreatePermission(ctx context.Context, p *rbacDatamodel.Permission) error
	FindPermissions(ctx context.Context, ids []int64) ([]*rbacDatamodel.Permission, error)

	AddRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	RemoveRolePermission(ctx context.Context, roleID, permissionID int64) error

	UserExists(ctx context.Context, userID int64) (bool, error)
	// ExistingJobIDs returns the subset of ids that name a stored job.
	ExistingJobIDs(ctx context.Context, ids []int64) ([]int64, error)
	ReplaceUserScope(ctx context.Context, userID int64, jobIDs []int64) error
}

// GrantReader reads the role→permission join for every role at once.
type GrantReader interface {
	AllRolePermissionNames(ctx context.Context) ([]RolePermissionName, error)
	AssignedScope(ctx context.Context, userID int64) ([]int64, error)
}

// Service administers roles, permissions, their edges and user scopes.
// Every write announces rbac.changed synchronously so cached permission
// sets are gone before the call returns.
type Service struct {
	repo      RepositoryAPI
	grants    GrantReader
	resolver  *PermissionResolver
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, grants GrantReader, resolver *PermissionResolver, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		grants:    grants,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	grants, err := s.grants.AllRolePermissionNames(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}

	byRole := make(map[int64][]string)
	for _, g := range grants {
		byRole[g.RoleID] = append(byRole[g.RoleID], g.Name)
	}

	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, RoleFromDataModel(row, dedupe(byRole[row.ID])))
	}
	return roles, nil
}

func (s *Service) CreateRole(ctx context.Context, dto RoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetRoleByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if existing != nil {
		return nil, internal.ErrRoleExists
	}

	row := &rbacDatamodel.Role{Name: dto.Name}
	if err := s.repo.CreateRole(ctx, row); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.logger.Info("role created", "role_id", row.ID, "name", row.Name)
	if err := s.changed(ctx, "role created", row.ID); err != nil {
		return nil, err
	}
	return RoleFromDataModel(row, nil), nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto RoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.getRole(ctx, id)
	if err != nil {
		return nil, err
	}

	clash, err := s.repo.GetRoleByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if clash != nil && clash.ID != id {
		return nil, internal.ErrRoleExists
	}

	row.Name = dto.Name
	if err := s.repo.UpdateRole(ctx, row); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	if err := s.changed(ctx, "role updated", id); err != nil {
		return nil, err
	}

	perms, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return RoleFromDataModel(row, perms), nil
}

func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	if id == DefaultRoleID {
		return internal.ErrDefaultRole
	}
	if _, err := s.getRole(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	s.logger.Info("role deleted", "role_id", id)
	return s.changed(ctx, "role deleted", id, DefaultRoleID)
}

// ListPermissions returns every permission grouped by category, both
// levels ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]PermissionGroup, error) {
	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}

	index := make(map[string]int)
	groups := make([]PermissionGroup, 0)
	for _, row := range rows {
		i, ok := index[row.Category]
		if !ok {
			i = len(groups)
			index[row.Category] = i
			groups = append(groups, PermissionGroup{Category: row.Category})
		}
		groups[i].Permissions = append(groups[i].Permissions, PermissionFromDataModel(row))
	}

	slices.SortFunc(groups, func(a, b PermissionGroup) int {
		return cmp.Compare(a.Category, b.Category)
	})
	for i := range groups {
		slices.SortFunc(groups[i].Permissions, func(a, b Permission) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}
	return groups, nil
}

func (s *Service) CreatePermission(ctx context.Context, dto PermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPermissionByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if existing != nil {
		return nil, internal.ErrPermissionDup
	}

	row := &rbacDatamodel.Permission{Name: dto.Name, Category: dto.Category}
	if err := s.repo.CreatePermission(ctx, row); err != nil {
		return nil, fmt.Errorf("create permission: %w", err)
	}

	p := PermissionFromDataModel(row)
	s.logger.Info("permission created", "permission_id", p.ID, "name", p.Name)
	if err := s.changed(ctx, "permission created"); err != nil {
		return nil, err
	}
	return &p, nil
}

// AssignPermissions adds the edges role→permission that do not exist yet.
// Repeating a call is a no-op. Unknown permission ids reject the whole
// request.
func (s *Service) AssignPermissions(ctx context.Context, roleID int64, dto AssignPermissionsDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.getRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	ids := dedupeIDs(dto.Permissions)
	found, err := s.repo.FindPermissions(ctx, ids)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if len(found) != len(ids) {
		known := make([]int64, 0, len(found))
		for _, p := range found {
			known = append(known, p.ID)
		}
		missing := missingIDs(ids, known)
		return nil, internal.NewValidationError("Unknown permission", internal.ErrCodeUnknownPermission).
			WithDetails(map[string]interface{}{"permission_ids": missing})
	}

	if err := s.repo.AddRolePermissions(ctx, roleID, ids); err != nil {
		return nil, fmt.Errorf("assign permissions: %w", err)
	}
	if err := s.changed(ctx, "permissions assigned", roleID); err != nil {
		return nil, err
	}

	perms, err := s.resolver.Resolve(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return RoleFromDataModel(row, perms), nil
}

func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	if _, err := s.getRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.repo.RemoveRolePermission(ctx, roleID, permissionID); err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return s.changed(ctx, "permission revoked", roleID)
}

// AssignScope replaces the set of jobs a user is scoped to. An empty list
// leaves the user with no scope attribute.
func (s *Service) AssignScope(ctx context.Context, userID int64, dto AssignScopeDTO) ([]int64, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	jobIDs := dedupeIDs(dto.JobIDs)
	found, err := s.repo.ExistingJobIDs(ctx, jobIDs)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if missing := missingIDs(jobIDs, found); len(missing) > 0 {
		return nil, internal.NewValidationError("Unknown job", internal.ErrCodeUnknownJob).
			WithDetails(map[string]interface{}{"job_ids": missing})
	}

	if err := s.repo.ReplaceUserScope(ctx, userID, jobIDs); err != nil {
		return nil, fmt.Errorf("assign scope: %w", err)
	}

	s.logger.Info("scope assigned", "user_id", userID, "jobs", len(jobIDs))
	if err := s.changed(ctx, "scope assigned"); err != nil {
		return nil, err
	}
	return jobIDs, nil
}

func (s *Service) GetScope(ctx context.Context, userID int64) ([]int64, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	scope, err := s.grants.AssignedScope(ctx, userID)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if scope == nil {
		scope = []int64{}
	}
	return scope, nil
}

func (s *Service) getRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	row, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}
	return row, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return internal.NewStoreUnavailableError(err)
	}
	if !ok {
		return internal.ErrUserNotFound
	}
	return nil
}

// changed publishes rbac.changed. The write already happened, so a failing
// subscriber is reported as a store outage rather than rolled back.
func (s *Service) changed(ctx context.Context, reason string, roleIDs ...int64) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishSync(ctx, events.NewRBACChangedEvent(reason, roleIDs...)); err != nil {
		s.logger.Error("permission cache invalidation failed", "reason", reason, "error", err)
		return internal.NewStoreUnavailableError(err)
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingIDs returns the ids absent from found, in request order.
func missingIDs(ids, found []int64) []int64 {
	var missing []int64
	for _, id := range ids {
		if !slices.Contains(found, id) {
			missing = append(missing, id)
		}
	}
	return missing
}
