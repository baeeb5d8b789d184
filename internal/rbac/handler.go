package rbac

import (
	"context"
	"net/http"

	"github.com/frahmantamala/recruitment/internal/transport"
)

type ServiceAPI interface {
	ListRoles(ctx context.Context) ([]*Role, error)
	CreateRole(ctx context.Context, dto RoleDTO) (*Role, error)
	UpdateRole(ctx context.Context, id int64, dto RoleDTO) (*Role, error)
	DeleteRole(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]PermissionGroup, error)
	CreatePermission(ctx context.Context, dto PermissionDTO) (*Permission, error)
	AssignPermissions(ctx context.Context, roleID int64, dto AssignPermissionsDTO) (*Role, error)
	RevokePermission(ctx context.Context, roleID, permissionID int64) error
	AssignScope(ctx context.Context, userID int64, dto AssignScopeDTO) ([]int64, error)
	GetScope(ctx context.Context, userID int64) ([]int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto RoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	role, err := h.Service.CreateRole(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto RoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	role, err := h.Service.UpdateRole(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteRole(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Role deleted"})
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PermissionsResponse{Categories: groups})
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var dto PermissionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, err := h.Service.CreatePermission(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto AssignPermissionsDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	role, err := h.Service.AssignPermissions(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	permID, ok := h.PathInt64(w, r, "permissionId")
	if !ok {
		return
	}

	if err := h.Service.RevokePermission(r.Context(), roleID, permID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Permission revoked"})
}

func (h *Handler) AssignScope(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto AssignScopeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	jobIDs, err := h.Service.AssignScope(r.Context(), userID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ScopeResponse{UserID: userID, JobIDs: jobIDs})
}

func (h *Handler) GetScope(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}

	jobIDs, err := h.Service.GetScope(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ScopeResponse{UserID: userID, JobIDs: jobIDs})
}
