package repo

import (
	"strings"

	"github.com/villaingsk/woo-protect/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB opens the database and runs migrations. A postgres:// DSN picks
// the postgres driver; anything else is treated as a SQLite path
// (modernc.org/sqlite, no cgo).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dial = postgres.Open(dsn)
	} else {
		if dsn == "" {
			dsn = "file:woo-protect.db"
		}
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.Category{},
		&model.ProtectionRecord{},
		&model.CategoryUnlock{},
		&model.Settings{},
		&model.Admin{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
