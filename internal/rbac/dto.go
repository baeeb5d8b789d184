package rbac

import "github.com/frahmantamala/recruitment/internal/core/common/validation"

type RoleDTO struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (d RoleDTO) Validate() error {
	return validation.Struct(d)
}

type PermissionDTO struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=100"`
}

func (d PermissionDTO) Validate() error {
	return validation.Struct(d)
}

type AssignPermissionsDTO struct {
	Permissions []int64 `json:"permissions" validate:"required,min=1"`
}

func (d AssignPermissionsDTO) Validate() error {
	return validation.Struct(d)
}

type AssignScopeDTO struct {
	JobIDs []int64 `json:"job_ids" validate:"required,dive,gt=0"`
}

func (d AssignScopeDTO) Validate() error {
	return validation.Struct(d)
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type PermissionGroup struct {
	Category    string       `json:"category"`
	Permissions []Permission `json:"permissions"`
}

type PermissionsResponse struct {
	Categories []PermissionGroup `json:"categories"`
}

type ScopeResponse struct {
	UserID int64   `json:"user_id"`
	JobIDs []int64 `json:"job_ids"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
