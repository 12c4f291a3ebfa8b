package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/cardswap/internal/config"
)

const sqlitePrefix = "sqlite://"

// NewDB initializes the database connection using DSN from config.
// A DSN of the form sqlite://path opens a local SQLite file instead of MySQL,
// which is handy for running the API without a database server.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(cfg.DB.DSN, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(cfg.DB.DSN, sqlitePrefix))
	} else {
		dialector = mysql.Open(cfg.DB.DSN)
	}

	logLevel := logger.Warn
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = logger.Info // log SQL queries
	}

	database, err := Open(dialector, logger.Default.LogMode(logLevel))
	if err != nil {
		return nil, err
	}

	if dialector.Name() == "sqlite" {
		// SQLite allows a single writer; keep one connection so transactions serialize.
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// Open connects with the settings every environment shares.
func Open(dialector gorm.Dialector, log logger.Interface) (*gorm.DB, error) {
	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true, // surface unique violations as gorm.ErrDuplicatedKey
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return database, nil
}

// Migrate ensures schema is in sync with models.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
