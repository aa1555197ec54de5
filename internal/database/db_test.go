package database

import (
	"testing"

	"gorm.io/gorm"

	"github.com/docsentry/docsentry/internal/models"
	"github.com/docsentry/docsentry/internal/permissions"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestAutoMigrateAndSeedData(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("auto migrate and seed failed: %v", err)
	}

	var roleCount int64
	if err := db.Model(&models.Role{}).Count(&roleCount).Error; err != nil {
		t.Fatalf("count roles: %v", err)
	}
	if roleCount < 3 {
		t.Fatalf("expected at least 3 roles, got %d", roleCount)
	}

	var permissionCount int64
	if err := db.Model(&models.Permission{}).Count(&permissionCount).Error; err != nil {
		t.Fatalf("count permissions: %v", err)
	}
	if permissionCount != int64(len(permissions.GetAll())) {
		t.Fatalf("expected %d permissions, got %d", len(permissions.GetAll()), permissionCount)
	}

	// Admin holds the full code set; viewer only the read side.
	var adminGrants, viewerGrants int64
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", "admin").Count(&adminGrants).Error; err != nil {
		t.Fatalf("count admin grants: %v", err)
	}
	if adminGrants != permissionCount {
		t.Fatalf("expected admin to hold all %d codes, got %d", permissionCount, adminGrants)
	}
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", "viewer").Count(&viewerGrants).Error; err != nil {
		t.Fatalf("count viewer grants: %v", err)
	}
	if viewerGrants != 2 {
		t.Fatalf("expected viewer to hold 2 codes, got %d", viewerGrants)
	}

	// Seeding twice must not duplicate grants.
	if err := AutoMigrateAndSeed(db); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	var after int64
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", "admin").Count(&after).Error; err != nil {
		t.Fatalf("recount admin grants: %v", err)
	}
	if after != adminGrants {
		t.Fatalf("expected %d grants after reseed, got %d", adminGrants, after)
	}
}

func TestAutoMigrateCreatesEngineTables(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	migrator := db.Migrator()
	tables := []interface{}{
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Document{},
		&models.DocumentAssignment{},
		&models.CacheEntry{},
	}
	for _, table := range tables {
		if !migrator.HasTable(table) {
			t.Fatalf("expected table for %T to exist", table)
		}
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(Config{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
