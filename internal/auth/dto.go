package auth

import (
	"time"

	"github.com/frahmantamala/recruitment/internal/core/common/validation"
	"github.com/frahmantamala/recruitment/internal/core/identity"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d LoginDTO) Validate() error {
	return validation.Struct(d)
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=4,nefield=OldPassword"`
}

func (d ChangePasswordDTO) Validate() error {
	return validation.Struct(d)
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

func (d ForgotPasswordDTO) Validate() error {
	return validation.Struct(d)
}

type ResetPasswordDTO struct {
	Token       string `json:"token" validate:"required,len=4,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=4"`
}

func (d ResetPasswordDTO) Validate() error {
	return validation.Struct(d)
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal identity.Principal
	Username  string
	Contact   string
}

type RoleView struct {
	ID          *int64   `json:"id"`
	Permissions []string `json:"permissions"`
}

type ProfileResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Username  string     `json:"username,omitempty"`
	Contact   string     `json:"contact,omitempty"`
	Role      RoleView   `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (r *LoginResult) ToResponse() ProfileResponse {
	return ProfileResponse{
		ID:        r.Principal.UserID,
		Name:      r.Principal.Name,
		Email:     r.Principal.Email,
		Username:  r.Username,
		Contact:   r.Contact,
		Role:      RoleView{ID: r.Principal.RoleID, Permissions: r.Principal.Permissions},
		ExpiresAt: &r.ExpiresAt,
	}
}

func ProfileFromPrincipal(p *identity.Principal) ProfileResponse {
	return ProfileResponse{
		ID:    p.UserID,
		Name:  p.Name,
		Email: p.Email,
		Role:  RoleView{ID: p.RoleID, Permissions: p.Permissions},
	}
}
