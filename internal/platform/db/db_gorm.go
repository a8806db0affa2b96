// Package db opens the relational store and provides the transaction plumbing shared by repositories.
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds database connection settings.
type Config struct {
	// URL is a PostgreSQL connection string. When empty, SQLitePath is used instead.
	URL string
	// SQLitePath is the sqlite database file used for local development.
	SQLitePath string
	// ConnectTimeout bounds the total time spent retrying the initial connection.
	ConnectTimeout time.Duration
	// MaxOpenConns caps the connection pool (0 keeps the driver default).
	MaxOpenConns int
}

// Opener opens a gorm connection for a DSN. It is a seam for tests.
type Opener func(dsn string) (*gorm.DB, error)

// gormConfig returns the gorm settings used for every connection.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// PostgresOpener opens a PostgreSQL connection through the pgx-based gorm driver.
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// SQLiteOpener opens a sqlite database file.
func SQLiteOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), gormConfig())
}

// ConnectWithRetry calls opener until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open connects to PostgreSQL when cfg.URL is set and falls back to sqlite otherwise.
func Open(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if cfg.URL != "" {
		db, err = ConnectWithRetry(cfg.URL, cfg.ConnectTimeout, PostgresOpener)
	} else {
		slog.Warn("DATABASE_URL is not set; using sqlite", "path", cfg.SQLitePath)
		db, err = SQLiteOpener(cfg.SQLitePath)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return db, nil
}

// Migrate creates or updates the tables for the given models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
