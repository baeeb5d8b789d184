package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/recruitment/internal/core/identity"
)

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

func PrincipalFromContext(ctx context.Context) (*identity.Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*identity.Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

// UserIDFromContext returns 0 when no principal is attached.
func UserIDFromContext(ctx context.Context) int64 {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.UserID
	}
	return 0
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
