package repo

import (
	"testing"

	"github.com/villaingsk/woo-protect/internal/model"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory SQLite (modernc.org/sqlite) for repository tests
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file::memory:"}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(
		&model.Category{},
		&model.ProtectionRecord{},
		&model.CategoryUnlock{},
		&model.Settings{},
		&model.Admin{},
	); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	// an in-memory sqlite exists per connection; keep the pool at one
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return db
}
