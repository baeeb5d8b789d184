package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/identity"
	"github.com/frahmantamala/recruitment/internal/transport"
	"github.com/frahmantamala/recruitment/pkg/logger"
	"github.com/go-chi/chi"
)

// Authorizer is satisfied by rbac.Gate.
type Authorizer interface {
	Authenticate(ctx context.Context, token string) (*identity.Principal, error)
	Authorize(ctx context.Context, token, permission string, scope []int64) (*identity.Principal, error)
}

// ScopeFunc extracts the scope a request asks for. A nil scope skips the
// scope check.
type ScopeFunc func(r *http.Request) ([]int64, error)

// SessionAuth reads the session token from the request and runs it
// through the authorization gate before the handler.
type SessionAuth struct {
	*transport.BaseHandler
	gate       Authorizer
	cookieName string
}

func NewSessionAuth(base *transport.BaseHandler, gate Authorizer, cookieName string) *SessionAuth {
	return &SessionAuth{BaseHandler: base, gate: gate, cookieName: cookieName}
}

// RequireSession admits any caller holding a live session.
func (a *SessionAuth) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.gate.Authenticate(r.Context(), transport.SessionToken(r, a.cookieName))
		if err != nil {
			a.reject(w, r, "", err)
			return
		}
		next.ServeHTTP(w, withPrincipal(r, p))
	})
}

func (a *SessionAuth) RequirePermission(permission string) func(http.Handler) http.Handler {
	return a.RequirePermissionInScope(permission, nil)
}

func (a *SessionAuth) RequirePermissionInScope(permission string, scope ScopeFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var requested []int64
			if scope != nil {
				var err error
				if requested, err = scope(r); err != nil {
					a.HandleServiceError(w, err)
					return
				}
			}

			p, err := a.gate.Authorize(r.Context(), transport.SessionToken(r, a.cookieName), permission, requested)
			if err != nil {
				a.reject(w, r, permission, err)
				return
			}
			next.ServeHTTP(w, withPrincipal(r, p))
		})
	}
}

// ScopeFromURLParam requests the single job id carried in a chi URL param.
func ScopeFromURLParam(name string) ScopeFunc {
	return func(r *http.Request) ([]int64, error) {
		id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
		if err != nil {
			return nil, internal.NewValidationFieldError(name, "invalid "+name, internal.ErrCodeInvalidID)
		}
		return []int64{id}, nil
	}
}

func (a *SessionAuth) reject(w http.ResponseWriter, r *http.Request, permission string, err error) {
	a.Logger.Warn("authorization failed",
		"method", r.Method,
		"path", r.URL.Path,
		"permission", permission,
		"error", err)
	a.HandleServiceError(w, err)
}

func withPrincipal(r *http.Request, p *identity.Principal) *http.Request {
	ctx := internal.ContextWithPrincipal(r.Context(), p)
	ctx = logger.With(ctx, "userID", p.UserID)
	return r.WithContext(ctx)
}
