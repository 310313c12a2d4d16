package storage

import (
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"todo-server-go/internal/platform/errors"
)

// Open connects to the SQLite database and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(
				errors.KindStorage, "storage.open", "create database dir", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(
			errors.KindStorage, "storage.open", "open sqlite database", err)
	}

	if err := db.AutoMigrate(&User{}, &Todo{}, &Address{}); err != nil {
		return nil, errors.Wrap(
			errors.KindStorage, "storage.migrate", "auto migrate schema", err)
	}

	return db, nil
}
