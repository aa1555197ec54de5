package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/docsentry/docsentry/internal/models"
	"github.com/docsentry/docsentry/internal/permissions"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Document{},
		&models.DocumentAssignment{},
		&models.CacheEntry{},
	)
}

// SeedData populates the permission registry and the default system roles.
// Re-running is safe; existing rows are left untouched.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}

	roles := []models.Role{
		{
			BaseModel:   models.BaseModel{ID: "admin"},
			Name:        "Administrator",
			Description: "Full document and cache administration",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: "editor"},
			Name:        "Editor",
			Description: "Document authoring",
			IsSystem:    true,
		},
		{
			BaseModel:   models.BaseModel{ID: "viewer"},
			Name:        "Viewer",
			Description: "Read-only document access",
			IsSystem:    true,
		},
	}

	for _, role := range roles {
		if err := db.Where(models.Role{BaseModel: models.BaseModel{ID: role.ID}}).Attrs(role).FirstOrCreate(&models.Role{}).Error; err != nil {
			return err
		}
	}

	grants := map[string][]string{
		"admin": permissions.Codes(),
		"editor": {
			permissions.DocView,
			permissions.DocViewLogged,
			permissions.DocDownload,
			permissions.DocEdit,
			permissions.DocPublish,
			permissions.DocManageComments,
		},
		"viewer": {
			permissions.DocView,
			permissions.DocDownload,
		},
	}

	for roleID, codes := range grants {
		if err := assignRolePermissions(db, roleID, codes); err != nil {
			return err
		}
	}

	return nil
}
