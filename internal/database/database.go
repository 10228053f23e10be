package database

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gloggi/ausbildung-api/internal/config"
)

// Connect opens the database named by cfg.DatabaseURL. The schema is owned by
// the migration sequencer, so nothing is migrated here.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connected", zap.String("dialect", db.Dialector.Name()))
	return db, nil
}

// Open accepts sqlite://<path>, sqlite://:memory: and postgres:// URLs.
func Open(url string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	switch {
	case strings.HasPrefix(url, "sqlite://"):
		db, err := gorm.Open(sqlite.Open(sqliteDSN(strings.TrimPrefix(url, "sqlite://"))), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("gorm.Open(sqlite) -> %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db.DB -> %w", err)
		}
		// one connection keeps :memory: databases alive and serialises writers
		sqlDB.SetMaxOpenConns(1)
		return db, nil

	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		db, err := gorm.Open(postgres.New(postgres.Config{DSN: url}), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("gorm.Open(postgres) -> %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db.DB -> %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(time.Minute)
		sqlDB.SetConnMaxLifetime(10 * time.Minute)
		return db, nil
	}

	return nil, fmt.Errorf("database: unsupported url %q", url)
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}
