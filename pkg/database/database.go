// Package database opens the gorm connection shared by the services.
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config selects a driver and carries its connection settings.
type Config struct {
	Driver string // postgres | sqlite

	SQLitePath string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

// Open connects with the configured driver. An empty sqlite path means a
// private in-memory database.
func Open(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "file::memory:"
		}
		dialector = sqlite.Open(path + sqliteParams(path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if strings.ToLower(cfg.Driver) == "postgres" {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		sqlDB.SetMaxOpenConns(1)
	}

	logger.Info("database connected", zap.String("driver", dialector.Name()))
	return db, nil
}

func sqliteParams(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
