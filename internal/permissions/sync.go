package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docsentry/docsentry/internal/models"
)

// Sync persists registered permission codes to the backing database so role
// grants can reference them by ID.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	defs := GetAll()
	if len(defs) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for _, def := range defs {
		record := models.Permission{
			BaseModel:   models.BaseModel{ID: def.Code},
			Code:        def.Code,
			Module:      def.Module,
			Description: def.Description,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "module", "description"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", def.Code, err)
		}
	}

	return nil
}
