package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/identity"
)

// SessionResolver maps an opaque session token to the identity that owns
// it. It only reads: expiry is never extended here.
type SessionResolver struct {
	store SessionStore
	now   Clock
}

func NewSessionResolver(store SessionStore, now Clock) *SessionResolver {
	if now == nil {
		now = time.Now
	}
	return &SessionResolver{store: store, now: now}
}

func (r *SessionResolver) Resolve(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, internal.ErrMissingSession
	}

	sess, err := r.store.GetSession(ctx, token)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if sess == nil {
		return nil, internal.ErrInvalidSession
	}

	if sess.Expires < EpochSeconds(r.now()) {
		return nil, internal.ErrSessionExpired
	}

	u, err := r.store.GetUser(ctx, sess.UserID)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if u == nil {
		return nil, internal.ErrOrphanedSession
	}

	return &identity.Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		RoleID: u.RoleID,
		Token:  sess.ID,
	}, nil
}
