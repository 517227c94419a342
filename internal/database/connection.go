package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clickmapper/clickmapper/internal/models"
)

// journalPragmas let `clickmapper report` read while a running overlay writes
const journalPragmas = "?_busy_timeout=5000&_journal_mode=WAL"

// DB is the journal database
type DB struct {
	*gorm.DB
}

// Connect opens the journal database at dbPath, creating its directory if
// needed. Writes go through a single connection.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	gdb, err := gorm.Open(sqlite.Open(dbPath+journalPragmas), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open journal %s", dbPath)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)

	return &DB{gdb}, nil
}

// Initialize creates or migrates the journal tables
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.LaunchEvent{}, &models.ErrorLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize journal schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
