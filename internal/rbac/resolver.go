package rbac

import (
	"context"
	"log/slog"
	"slices"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/events"
)

// PermissionReader runs the role→permission join. Duplicate names are
// allowed in the result; the resolver removes them.
type PermissionReader interface {
	RolePermissionNames(ctx context.Context, roleID int64) ([]string, error)
}

// PermissionResolver flattens a role into the set of permission names
// granted through its edges. An unknown role resolves to the empty set.
type PermissionResolver struct {
	reader PermissionReader
	cache  Cache
	logger *slog.Logger
}

// NewPermissionResolver builds a resolver. cache may be nil, in which case
// every call reads the store.
func NewPermissionResolver(reader PermissionReader, cache Cache, logger *slog.Logger) *PermissionResolver {
	return &PermissionResolver{reader: reader, cache: cache, logger: logger}
}

// Resolve returns the sorted, duplicate free permission names of roleID.
func (r *PermissionResolver) Resolve(ctx context.Context, roleID int64) ([]string, error) {
	var version int64
	if r.cache != nil {
		v, err := r.cache.Version(ctx)
		if err != nil {
			r.logger.Warn("permission cache unavailable", "error", err)
		} else {
			version = v
			perms, ok, err := r.cache.Get(ctx, version, roleID)
			if err != nil {
				r.logger.Warn("permission cache read failed", "role_id", roleID, "error", err)
			} else if ok {
				return perms, nil
			}
		}
	}

	names, err := r.reader.RolePermissionNames(ctx, roleID)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	perms := dedupe(names)

	if r.cache != nil {
		// a write made under an older version is never read back
		if err := r.cache.Set(ctx, version, roleID, perms); err != nil {
			r.logger.Warn("permission cache write failed", "role_id", roleID, "error", err)
		}
	}
	return perms, nil
}

// ResolveFor resolves a possibly dangling role reference. nil means no
// permissions.
func (r *PermissionResolver) ResolveFor(ctx context.Context, roleID *int64) ([]string, error) {
	if roleID == nil {
		return []string{}, nil
	}
	return r.Resolve(ctx, *roleID)
}

// Invalidate drops every cached permission set.
func (r *PermissionResolver) Invalidate(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx)
}

// SubscribeInvalidation hooks the cache to RBAC writes. Services publish
// those with PublishSync, so the cache is clean before the write returns.
func (r *PermissionResolver) SubscribeInvalidation(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeRBACChanged, func(ctx context.Context, e events.Event) error {
		return r.Invalidate(ctx)
	})
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
