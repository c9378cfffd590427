package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventdash/internal/model"
)

// NewDB opens the database and runs migrations. dbType is "sqlite" or
// "postgres"; anything else falls back to sqlite.
func NewDB(dbType, dsn string) (*gorm.DB, error) {
	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var (
		db  *gorm.DB
		err error
	)
	// TranslateError lets callers match gorm.ErrDuplicatedKey on the
	// (name, user_id) unique index regardless of driver.
	gormCfg := &gorm.Config{Logger: dbLogger, TranslateError: true}
	if dbType == "postgres" {
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	} else {
		if dsn == "" {
			dsn = "eventdash.db"
		}
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		// SQLite leaves FK enforcement off unless asked; the category
		// delete relies on ON DELETE CASCADE to drop owned events.
		if !strings.Contains(dsn, "_foreign_keys") {
			if strings.Contains(dsn, "?") {
				dsn += "&_foreign_keys=on"
			} else {
				dsn += "?_foreign_keys=on"
			}
		}
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("underlying db: %w", err)
	}
	// The aggregator fans out many concurrent read queries per request;
	// keep sqlite conservative, postgres roomier.
	if dbType == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
	}

	if err := db.AutoMigrate(&model.User{}, &model.EventCategory{}, &model.Event{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
