package rbac

import (
	"context"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/identity"
)

type SessionResolverAPI interface {
	Resolve(ctx context.Context, token string) (*identity.Identity, error)
}

type PermissionResolverAPI interface {
	ResolveFor(ctx context.Context, roleID *int64) ([]string, error)
}

// ScopeStore returns the job ids assigned to a user. An empty result means
// the user has no scope attribute at all.
type ScopeStore interface {
	AssignedScope(ctx context.Context, userID int64) ([]int64, error)
}

// Gate decides every authorized operation. Each call is evaluated fresh:
// resolve the session, flatten the role, check the permission, then the
// scope. It never writes and never retries.
type Gate struct {
	sessions    SessionResolverAPI
	permissions PermissionResolverAPI
	scopes      ScopeStore
}

func NewGate(sessions SessionResolverAPI, permissions PermissionResolverAPI, scopes ScopeStore) *Gate {
	return &Gate{sessions: sessions, permissions: permissions, scopes: scopes}
}

// Authenticate resolves the caller and its permission set without
// requiring any particular permission.
func (g *Gate) Authenticate(ctx context.Context, token string) (*identity.Principal, error) {
	id, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	perms, err := g.permissions.ResolveFor(ctx, id.RoleID)
	if err != nil {
		return nil, err
	}

	return &identity.Principal{Identity: *id, Permissions: perms}, nil
}

// Authorize requires permission and, when scope is non-nil, that every
// element of scope is assigned to the caller.
func (g *Gate) Authorize(ctx context.Context, token, permission string, scope []int64) (*identity.Principal, error) {
	p, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if !p.HasPermission(permission) {
		return nil, internal.NewInsufficientPermissionsError(permission)
	}

	if scope == nil {
		return p, nil
	}

	assigned, err := g.scopes.AssignedScope(ctx, p.UserID)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if len(assigned) == 0 {
		return nil, internal.ErrNoScopeAssigned
	}

	allowed := make(map[int64]struct{}, len(assigned))
	for _, id := range assigned {
		allowed[id] = struct{}{}
	}
	for _, want := range scope {
		if _, ok := allowed[want]; !ok {
			return nil, internal.NewScopeNotPermittedError(want)
		}
	}

	p.Scope = assigned
	return p, nil
}
