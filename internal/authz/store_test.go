package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/docsentry/docsentry/internal/models"
)

func newStoreFixture(t *testing.T) (Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Document{},
		&models.DocumentAssignment{},
	))

	store, err := NewStore(db)
	require.NoError(t, err)
	return store, db
}

func seedUserWithRole(t *testing.T, db *gorm.DB, username string, status models.UserStatus, codes ...string) *models.User {
	t.Helper()

	role := &models.Role{Name: username + "-role"}
	require.NoError(t, db.Create(role).Error)

	for _, code := range codes {
		perm := &models.Permission{
			BaseModel: models.BaseModel{ID: code},
			Code:      code,
			Module:    "document",
		}
		require.NoError(t, db.FirstOrCreate(perm, "id = ?", code).Error)
		require.NoError(t, db.Create(&models.RolePermission{
			RoleID:       role.ID,
			PermissionID: perm.ID,
		}).Error)
	}

	user := &models.User{
		Username: username,
		Status:   status,
		Roles:    []models.Role{*role},
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestPermissionCodesForUser(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	seedUserWithRole(t, db, "alice", models.UserStatusActive, "DOC:VIEW", "DOC:EDIT")

	codes, err := store.PermissionCodesForUser(ctx, "alice")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"DOC:VIEW", "DOC:EDIT"}, codes)
}

func TestPermissionCodesDeduplicateAcrossRoles(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	user := seedUserWithRole(t, db, "alice", models.UserStatusActive, "DOC:VIEW")

	// Second role granting an overlapping code must not duplicate it.
	second := &models.Role{Name: "reviewers"}
	require.NoError(t, db.Create(second).Error)
	require.NoError(t, db.Create(&models.RolePermission{
		RoleID:       second.ID,
		PermissionID: "DOC:VIEW",
	}).Error)
	require.NoError(t, db.Model(user).Association("Roles").Append(second))

	codes, err := store.PermissionCodesForUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"DOC:VIEW"}, codes)
}

func TestInactiveUserHoldsNoCodes(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	seedUserWithRole(t, db, "mallory", models.UserStatusSuspended, "DOC:VIEW")

	codes, err := store.PermissionCodesForUser(ctx, "mallory")
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestUnknownUserHoldsNoCodes(t *testing.T) {
	ctx := context.Background()
	store, _ := newStoreFixture(t)

	codes, err := store.PermissionCodesForUser(ctx, "ghost")
	require.NoError(t, err)
	require.Empty(t, codes)
}

func TestAssignmentsLookup(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	user := seedUserWithRole(t, db, "alice", models.UserStatusActive)
	doc := &models.Document{Title: "Q3 report"}
	require.NoError(t, db.Create(doc).Error)
	require.NoError(t, db.Create(&models.DocumentAssignment{
		DocumentID:     doc.ID,
		UserID:         user.ID,
		AssignmentType: models.AssignmentEditor,
	}).Error)

	assignments, err := store.Assignments(ctx, user.ID, doc.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.True(t, assignments[0].IsEditor())

	assignments, err = store.Assignments(ctx, user.ID, "other-doc")
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestIsResourcePublic(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	public := &models.Document{Title: "handbook", IsPublic: true}
	private := &models.Document{Title: "draft"}
	require.NoError(t, db.Create(public).Error)
	require.NoError(t, db.Create(private).Error)

	got, err := store.IsResourcePublic(ctx, public.ID)
	require.NoError(t, err)
	require.True(t, got)

	got, err = store.IsResourcePublic(ctx, private.ID)
	require.NoError(t, err)
	require.False(t, got)

	// Unknown documents are not public and not an error.
	got, err = store.IsResourcePublic(ctx, "missing")
	require.NoError(t, err)
	require.False(t, got)
}

func TestUserIDForUsername(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	user := seedUserWithRole(t, db, "alice", models.UserStatusActive)

	id, err := store.UserIDForUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, id)

	_, err = store.UserIDForUsername(ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUsernamesForRole(t *testing.T) {
	ctx := context.Background()
	store, db := newStoreFixture(t)

	seedUserWithRole(t, db, "alice", models.UserStatusActive)
	seedUserWithRole(t, db, "bob", models.UserStatusActive)

	var role models.Role
	require.NoError(t, db.First(&role, "name = ?", "alice-role").Error)

	usernames, err := store.UsernamesForRole(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, usernames)
}
