// Package cache provides the response cache backends used by the fetcher.
package cache

import (
	"context"
	"fmt"
	"time"
)

type Backend string

const (
	BackendMemory     Backend = "memory"
	BackendFilesystem Backend = "filesystem"
	BackendSqlite     Backend = "sqlite"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendMemory, BackendFilesystem, BackendSqlite:
		return b, nil
	default:
		return "", fmt.Errorf("unknown cache backend: %q", s)
	}
}

// Entry is a cached response body
type Entry struct {
	Body      []byte
	FetchedAt time.Time
}

// Expired reports whether the entry is older than ttl. A ttl <= 0 never expires.
func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.FetchedAt) > ttl
}

// Cache stores response bodies keyed by URL.
// Implementations replace entries atomically.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Backend Backend
	TTL     time.Duration
	// Path is the directory (filesystem) or database file (sqlite)
	Path string
	// Size is the maximum number of entries (memory)
	Size int
}

const defaultSize = 1000

// New creates the cache described by cfg
func New(cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		size := cfg.Size
		if size <= 0 {
			size = defaultSize
		}
		return NewMemory(size, cfg.TTL), nil
	case BackendFilesystem:
		return NewFilesystem(cfg.Path, cfg.TTL)
	case BackendSqlite:
		return NewSqlite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Backend)
	}
}
