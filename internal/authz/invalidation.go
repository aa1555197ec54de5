package authz

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/docsentry/docsentry/pkg/logger"
)

// Invalidator is the eviction side of the cache contract. Every mutation of
// authorization data maps to exactly one method here; a mutator that commits
// without calling its method leaves readers stale until the TTL backstop.
type Invalidator struct {
	cache *PermissionCache
	store Store
	log   *zap.Logger
}

// NewInvalidator wires the eviction contract over the cache and store.
func NewInvalidator(cache *PermissionCache, store Store) (*Invalidator, error) {
	if cache == nil {
		return nil, errors.New("authz: permission cache is required")
	}
	if store == nil {
		return nil, errors.New("authz: permission store is required")
	}
	return &Invalidator{
		cache: cache,
		store: store,
		log:   logger.WithModule("authz.invalidation"),
	}, nil
}

// RolePermissionsChanged evicts the cached permission set of every member of
// the role. If the membership cannot be resolved it clears the whole
// permissions namespace rather than leave an unknown member stale.
func (i *Invalidator) RolePermissionsChanged(ctx context.Context, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return errors.New("authz: role id is required")
	}

	usernames, err := i.store.UsernamesForRole(ctx, roleID)
	if err != nil {
		i.log.Warn("role membership lookup failed; clearing permissions namespace",
			zap.String("role_id", roleID),
			zap.Error(err),
		)
		return i.cache.EvictAllUserPermissions(ctx)
	}

	var errs error
	for _, username := range usernames {
		errs = multierr.Append(errs, i.cache.EvictUserPermissions(ctx, username))
	}
	return errs
}

// UserRolesChanged evicts the user's cached permission set after a role grant
// or revocation.
func (i *Invalidator) UserRolesChanged(ctx context.Context, username string) error {
	return i.cache.EvictUserPermissions(ctx, username)
}

// UserStatusChanged evicts everything cached for the user: the permission set
// and all assignment entries. A suspended user must lose access on the next
// read, not at TTL expiry.
func (i *Invalidator) UserStatusChanged(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("authz: username is required")
	}

	errs := i.cache.EvictUserPermissions(ctx, username)

	userID, err := i.store.UserIDForUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return errs
		}
		return multierr.Append(errs, err)
	}

	return multierr.Append(errs, i.cache.EvictAssignments(ctx, userID))
}

// AssignmentChanged evicts the single (user, document) assignment entry after
// a grant, change, or revocation.
func (i *Invalidator) AssignmentChanged(ctx context.Context, userID, documentID string) error {
	userID = strings.TrimSpace(userID)
	documentID = strings.TrimSpace(documentID)
	if userID == "" || documentID == "" {
		return errors.New("authz: user id and document id are required")
	}
	return i.cache.EvictAssignments(ctx, userID, documentID)
}

// VisibilityChanged evicts the document's cached visibility flag after an
// is-public toggle.
func (i *Invalidator) VisibilityChanged(ctx context.Context, documentID string) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return errors.New("authz: document id is required")
	}
	return i.cache.EvictResourceVisibility(ctx, documentID)
}
