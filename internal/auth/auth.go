package auth

import (
	"context"
	"time"

	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
)

// Clock is the "now" source for expiry checks.
type Clock func() time.Time

// EpochSeconds converts t to the floating point epoch seconds stored in
// sessions.expires and forgot_password.expires. Unix time carries no zone,
// so comparisons are timezone independent.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// SessionStore is the read side used by the SessionResolver. Both lookups
// return (nil, nil) when the row does not exist.
type SessionStore interface {
	GetSession(ctx context.Context, token string) (*userDatamodel.Session, error)
	GetUser(ctx context.Context, id int64) (*userDatamodel.User, error)
}

type Repository interface {
	SessionStore
	GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	// UpsertSession writes the session keyed by user and returns the token
	// that is live afterwards.
	UpsertSession(ctx context.Context, session *userDatamodel.Session) (string, error)
	DeleteSession(ctx context.Context, token string) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	CreateResetToken(ctx context.Context, token *userDatamodel.ForgotPassword) error
	GetResetToken(ctx context.Context, token string) (*userDatamodel.ForgotPassword, error)
	DeleteResetToken(ctx context.Context, id int64) error
}

// PermissionLookup flattens a role into its permission names. A nil role
// yields no permissions.
type PermissionLookup interface {
	ResolveFor(ctx context.Context, roleID *int64) ([]string, error)
}
