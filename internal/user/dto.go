package user

import "github.com/frahmantamala/recruitment/internal/core/common/validation"

type CreateUserDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=4"`
	Contact     string `json:"contact" validate:"omitempty,max=32"`
	Username    string `json:"username" validate:"omitempty,max=64"`
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	RoleID      *int64 `json:"role_id" validate:"required,min=0"`
}

func (d CreateUserDTO) Validate() error {
	return validation.Struct(d)
}

// UpdateUserDTO changes only the fields that are present.
type UpdateUserDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Contact     *string `json:"contact" validate:"omitempty,max=32"`
	Username    *string `json:"username" validate:"omitempty,min=1,max=64"`
	CompanyName *string `json:"company_name"`
	JobTitle    *string `json:"job_title"`
	Message     *string `json:"message"`
	RoleID      *int64  `json:"role_id" validate:"omitempty,min=0"`
}

func (d UpdateUserDTO) Validate() error {
	return validation.Struct(d)
}

type UserResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Contact     string    `json:"contact"`
	CompanyName string    `json:"company_name,omitempty"`
	JobTitle    string    `json:"job_title,omitempty"`
	Role        *RoleView `json:"role"`
	CreatedAt   string    `json:"created_at"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
