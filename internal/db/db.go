// Package db opens the SQLite database that stores contact submissions.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultBusyTimeout = 5 * time.Second

// Options controls how the database is opened.
type Options struct {
	Path        string
	BusyTimeout time.Duration
	// Logger receives slow query and error reports. Nil keeps gorm's default
	// warn-level logger.
	Logger *logrus.Logger
}

// Open connects to the SQLite file at opts.Path, creating its directory
// first, and applies the pragmas the contact tables rely on.
func Open(opts Options) (*gorm.DB, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, eris.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "creating database directory %s", dir)
		}
	}

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}

	conn, err := gorm.Open(sqlite.Open("file:"+path), &gorm.Config{Logger: gormLogger(opts.Logger)})
	if err != nil {
		return nil, eris.Wrapf(err, "opening sqlite database %s", path)
	}

	pragmas := []string{
		"foreign_keys = ON",
		fmt.Sprintf("busy_timeout = %d", busy.Milliseconds()),
		"journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if err := conn.Exec("PRAGMA " + pragma).Error; err != nil {
			_ = Close(conn)
			return nil, eris.Wrapf(err, "applying pragma %q", pragma)
		}
	}

	// Pragmas are per connection, so every query shares the one they were set on.
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, eris.Wrap(err, "retrieving sql.DB from gorm")
	}
	sqlDB.SetMaxOpenConns(1)

	return conn, nil
}

func gormLogger(log *logrus.Logger) logger.Interface {
	if log == nil {
		return logger.Default.LogMode(logger.Warn)
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Close releases the connection. A nil database is a no-op.
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB for close")
	}
	return eris.Wrap(sqlDB.Close(), "closing database connection")
}

// Ping reports whether the database answers. The health endpoint calls it on every request.
func Ping(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return eris.New("database is not open")
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB for ping")
	}
	return eris.Wrap(sqlDB.PingContext(ctx), "pinging database")
}
