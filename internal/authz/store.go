package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/docsentry/docsentry/internal/models"
)

var (
	// ErrStoreUnavailable marks failures reaching the system of record. The
	// evaluator converts it to a denial; callers may test for it with errors.Is.
	ErrStoreUnavailable = errors.New("authz: permission store unavailable")
	// ErrUserNotFound indicates the username does not resolve to a known user.
	ErrUserNotFound = errors.New("authz: user not found")
)

// Store is the read-only contract over persistent authorization data. The
// engine never writes through it; administrative services own all mutations.
type Store interface {
	// PermissionCodesForUser returns the flattened union of permission codes
	// across all roles of the named user. Users that are not ACTIVE hold no
	// codes at all.
	PermissionCodesForUser(ctx context.Context, username string) ([]string, error)
	// Assignments returns the per-document grants held by the user on the
	// document, at most one row under the composite key.
	Assignments(ctx context.Context, userID, documentID string) ([]models.DocumentAssignment, error)
	// IsResourcePublic reports the document's visibility flag. Unknown
	// documents are not public.
	IsResourcePublic(ctx context.Context, resourceID string) (bool, error)
	// UserIDForUsername resolves a username to the user's ID, or ErrUserNotFound.
	UserIDForUsername(ctx context.Context, username string) (string, error)
	// UsernamesForRole lists the members of a role. Supports role-level cache
	// invalidation without a separate reverse index.
	UsernamesForRole(ctx context.Context, roleID string) ([]string, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore constructs the gorm-backed permission store.
func NewStore(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, errors.New("authz: db is required")
	}
	return &gormStore{db: db}, nil
}

func (s *gormStore) PermissionCodesForUser(ctx context.Context, username string) ([]string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("authz: username is required")
	}

	var codes []string
	err := s.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("users.username = ? AND users.status = ?", username, models.UserStatusActive).
		Distinct().
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, storeErr("load permission codes", err)
	}

	return codes, nil
}

func (s *gormStore) Assignments(ctx context.Context, userID, documentID string) ([]models.DocumentAssignment, error) {
	userID = strings.TrimSpace(userID)
	documentID = strings.TrimSpace(documentID)
	if userID == "" || documentID == "" {
		return nil, errors.New("authz: user id and document id are required")
	}

	var assignments []models.DocumentAssignment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Find(&assignments).Error
	if err != nil {
		return nil, storeErr("load assignments", err)
	}

	return assignments, nil
}

func (s *gormStore) IsResourcePublic(ctx context.Context, resourceID string) (bool, error) {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return false, errors.New("authz: resource id is required")
	}

	var doc models.Document
	err := s.db.WithContext(ctx).
		Select("id", "is_public").
		Take(&doc, "id = ?", resourceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("load document visibility", err)
	}

	return doc.IsPublic, nil
}

func (s *gormStore) UserIDForUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("authz: username is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Select("id").
		Take(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return "", storeErr("resolve username", err)
	}

	return user.ID, nil
}

func (s *gormStore) UsernamesForRole(ctx context.Context, roleID string) ([]string, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, errors.New("authz: role id is required")
	}

	var usernames []string
	err := s.db.WithContext(ctx).
		Table("users").
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Where("user_roles.role_id = ?", roleID).
		Pluck("users.username", &usernames).Error
	if err != nil {
		return nil, storeErr("load role members", err)
	}

	return usernames, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
