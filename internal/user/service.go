package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/auth"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	// Delete removes the user with its sessions, reset tokens, scope and CV.
	Delete(ctx context.Context, id int64) error
	RoleNames(ctx context.Context) (map[int64]string, error)
}

type PermissionLookup interface {
	ResolveFor(ctx context.Context, roleID *int64) ([]string, error)
}

type Service struct {
	repo        RepositoryAPI
	permissions PermissionLookup
	publisher   events.Publisher
	logger      *slog.Logger
	bcryptCost  int
}

func NewService(repo RepositoryAPI, permissions PermissionLookup, publisher events.Publisher, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		publisher:   publisher,
		logger:      logger,
		bcryptCost:  bcryptCost,
	}
}

func (s *Service) List(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	roles, err := s.repo.RoleNames(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}

	// one permission lookup per distinct role
	perRole := make(map[int64]*RoleView)
	out := make([]UserResponse, 0, len(rows))
	for _, row := range rows {
		u := FromDataModel(row)
		var view *RoleView
		if name, ok := roleName(roles, u.RoleID); ok {
			if view, ok = perRole[*u.RoleID]; !ok {
				perms, err := s.permissions.ResolveFor(ctx, u.RoleID)
				if err != nil {
					return nil, err
				}
				view = &RoleView{ID: *u.RoleID, Name: name, Permissions: perms}
				perRole[*u.RoleID] = view
			}
		}
		out = append(out, u.ToResponse(view))
	}

	s.logger.Info("listed users", "count", len(out))
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*UserResponse, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := s.roleView(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}
	resp := u.ToResponse(view)
	return &resp, nil
}

// Create registers an account and sends the welcome mail. The username is
// derived from the name when the caller leaves it empty.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	view, err := s.roleView(ctx, dto.RoleID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, internal.ErrRoleNotFound
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	username := dto.Username
	if username == "" {
		username = GenerateUsername(dto.Name)
	}

	u := &User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		RoleID:       dto.RoleID,
		Username:     username,
		Contact:      dto.Contact,
		CompanyName:  dto.CompanyName,
		JobTitle:     dto.JobTitle,
		CreatedAt:    time.Now().UTC(),
	}
	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.ID = row.ID

	s.logger.Info("user created", "user_id", u.ID, "role_id", *u.RoleID)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewUserCreatedEvent(u.ID, u.Email, u.Name)); err != nil {
			s.logger.Warn("failed to publish user created", "user_id", u.ID, "error", err)
		}
	}

	resp := u.ToResponse(view)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Contact != nil {
		u.Contact = *dto.Contact
	}
	if dto.Username != nil {
		u.Username = *dto.Username
	}
	if dto.CompanyName != nil {
		u.CompanyName = *dto.CompanyName
	}
	if dto.JobTitle != nil {
		u.JobTitle = *dto.JobTitle
	}
	if dto.Message != nil {
		u.Message = *dto.Message
	}
	if dto.RoleID != nil {
		u.RoleID = dto.RoleID
	}

	view, err := s.roleView(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}
	if dto.RoleID != nil && view == nil {
		return nil, internal.ErrRoleNotFound
	}

	if err := s.repo.Update(ctx, ToDataModel(u)); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	resp := u.ToResponse(view)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

// roleView returns nil for a missing or dangling role reference.
func (s *Service) roleView(ctx context.Context, roleID *int64) (*RoleView, error) {
	if roleID == nil {
		return nil, nil
	}
	roles, err := s.repo.RoleNames(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	name, ok := roleName(roles, roleID)
	if !ok {
		return nil, nil
	}
	perms, err := s.permissions.ResolveFor(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return &RoleView{ID: *roleID, Name: name, Permissions: perms}, nil
}

func roleName(roles map[int64]string, roleID *int64) (string, bool) {
	if roleID == nil {
		return "", false
	}
	name, ok := roles[*roleID]
	return name, ok
}
