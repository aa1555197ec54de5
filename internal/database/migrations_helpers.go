package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docsentry/docsentry/internal/models"
)

// assignRolePermissions inserts join rows for the role, skipping grants that
// already exist. Permission IDs that are not present in the permissions table
// are ignored rather than failing the seed.
func assignRolePermissions(db *gorm.DB, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	var role models.Role
	if err := db.Where("id = ?", roleID).First(&role).Error; err != nil {
		return err
	}

	var known []string
	if err := db.Model(&models.Permission{}).
		Where("id IN ?", permissionIDs).
		Pluck("id", &known).Error; err != nil {
		return err
	}
	if len(known) == 0 {
		return nil
	}

	rows := make([]models.RolePermission, 0, len(known))
	for _, permissionID := range known {
		rows = append(rows, models.RolePermission{
			RoleID:       role.ID,
			PermissionID: permissionID,
		})
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
