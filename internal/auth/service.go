package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/core/events"
	"github.com/frahmantamala/recruitment/internal/core/identity"
	"github.com/google/uuid"
)

type Options struct {
	BCryptCost    int
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	Now           Clock
}

// Service owns the write side of authentication: login, logout and the
// password flows. Reads of a presented token go through SessionResolver.
type Service struct {
	repo        Repository
	permissions PermissionLookup
	publisher   events.Publisher
	logger      *slog.Logger
	opts        Options
}

func NewService(repo Repository, permissions PermissionLookup, publisher events.Publisher, logger *slog.Logger, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:        repo,
		permissions: permissions,
		publisher:   publisher,
		logger:      logger,
		opts:        opts,
	}
}

// Login verifies credentials and upserts the user's single session. A
// user that already holds a session keeps its token; only the expiry moves.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if u == nil {
		return nil, internal.ErrInvalidCredentials
	}
	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	expiresAt := s.opts.Now().Add(s.opts.SessionTTL)
	token, err := s.repo.UpsertSession(ctx, &userDatamodel.Session{
		ID:      uuid.NewString(),
		UserID:  u.ID,
		Expires: EpochSeconds(expiresAt),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}

	perms, err := s.permissions.ResolveFor(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", u.ID)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: identity.Principal{
			Identity: identity.Identity{
				UserID: u.ID,
				Name:   u.Name,
				Email:  u.Email,
				RoleID: u.RoleID,
				Token:  token,
			},
			Permissions: perms,
		},
		Username: u.Username,
		Contact:  u.Contact,
	}, nil
}

func (s *Service) Logout(ctx context.Context, p *identity.Principal) error {
	if err := s.repo.DeleteSession(ctx, p.Token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("user logged out", "user_id", p.UserID)
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, p *identity.Principal, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetUser(ctx, p.UserID)
	if err != nil {
		return internal.NewStoreUnavailableError(err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}
	if err := VerifyPassword(u.PasswordHash, dto.OldPassword); err != nil {
		return internal.ErrInvalidCredentials
	}

	hash, err := HashPassword(dto.NewPassword, s.opts.BCryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.publish(ctx, events.NewPasswordChangedEvent(u.ID, u.Email, u.Name))
	return nil
}

// ForgotPassword issues a one-time code valid for ResetTokenTTL and mails
// it to the account owner.
func (s *Service) ForgotPassword(ctx context.Context, dto ForgotPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		return internal.NewStoreUnavailableError(err)
	}
	if u == nil {
		return internal.ErrUnknownEmail
	}

	code, err := GenerateResetToken()
	if err != nil {
		return internal.NewInternalError("failed to generate reset token", err)
	}

	if err := s.repo.CreateResetToken(ctx, &userDatamodel.ForgotPassword{
		UserID:  u.ID,
		Token:   code,
		Expires: EpochSeconds(s.opts.Now().Add(s.opts.ResetTokenTTL)),
	}); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	s.publish(ctx, events.NewPasswordResetRequestedEvent(u.ID, u.Email, u.Name, code))
	return nil
}

// ResetPassword consumes a reset code. Expired codes are deleted as they
// are found.
func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	fp, err := s.repo.GetResetToken(ctx, dto.Token)
	if err != nil {
		return internal.NewStoreUnavailableError(err)
	}
	if fp == nil {
		return internal.ErrInvalidResetToken
	}

	if fp.Expires < EpochSeconds(s.opts.Now()) {
		if err := s.repo.DeleteResetToken(ctx, fp.ID); err != nil {
			s.logger.Warn("failed to delete expired reset token", "id", fp.ID, "error", err)
		}
		return internal.ErrResetTokenExpired
	}

	hash, err := HashPassword(dto.NewPassword, s.opts.BCryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, fp.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.repo.DeleteResetToken(ctx, fp.ID); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}

	s.logger.Info("password reset", "user_id", fp.UserID)
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish event", "event_type", e.EventType(), "error", err)
	}
}
