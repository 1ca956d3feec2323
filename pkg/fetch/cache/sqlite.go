package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createCacheTable = `CREATE TABLE IF NOT EXISTS http_cache (
	url TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	fetched_at INTEGER NOT NULL
)`

type Sqlite struct {
	db *sql.DB
}

// NewSqlite opens (or creates) the cache database file at path
func NewSqlite(path string) (*Sqlite, error) {
	if path == "" {
		return nil, errors.New("sqlite cache requires a path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(createCacheTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &Sqlite{db: db}, nil
}

func (s *Sqlite) Get(ctx context.Context, key string) (Entry, bool) {
	var body []byte
	var fetched int64
	err := s.db.QueryRowContext(ctx,
		"SELECT body, fetched_at FROM http_cache WHERE url = ?", key).
		Scan(&body, &fetched)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Body: body, FetchedAt: time.UnixMilli(fetched)}, true
}

// Set replaces the entry in a single statement
func (s *Sqlite) Set(ctx context.Context, key string, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO http_cache (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		key, e.Body, e.FetchedAt.UnixMilli())
	return err
}

func (s *Sqlite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM http_cache WHERE url = ?", key)
	return err
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}
