package repository

import (
	"fmt"
	"log/slog"

	"github.com/karkasai/karkasai-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects to postgres when a DSN is given, otherwise to an
// in-process sqlite database (dev profile and tests).
func OpenDatabase(dsn string, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open("file::memory:?cache=shared")
		log.Warn("no DATABASE_URL configured, using in-memory sqlite")
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Role{},
		&domain.User{},
		&domain.Session{},
		&domain.Tag{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
	)
}
