// Package sqlite opens the single file store database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/db/migrate"
)

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type OpenOption func(*openConfig)

type openConfig struct {
	newDB   bool
	migrate bool
}

// WithNewDB removes an existing database file before opening
func WithNewDB(b bool) OpenOption {
	return func(c *openConfig) {
		c.newDB = b
	}
}

// WithMigrate controls whether the schema migrations are applied (default true)
func WithMigrate(b bool) OpenOption {
	return func(c *openConfig) {
		c.migrate = b
	}
}

// Open opens (or creates) the database file at path.
func Open(ctx context.Context, path string, opts ...OpenOption) (*sql.DB, error) {
	cfg := &openConfig{migrate: true}
	for _, opt := range opts {
		opt(cfg)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	if cfg.newDB {
		if err := Remove(path); err != nil {
			return nil, err
		}
	}
	if cfg.migrate {
		if err := migrate.MigrateDB(path); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", path, err)
		}
	}
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	log.Default().Named("store").Debug("opened store", log.String("path", path))
	return db, nil
}

// Remove deletes the database file and its WAL companions
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
