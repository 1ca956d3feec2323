package cache

import (
	"context"
	"time"

	"github.com/bluele/gcache"
)

type Memory struct {
	c gcache.Cache
}

// NewMemory creates a LRU cache holding up to size entries.
// Entries are evicted after ttl (if > 0).
func NewMemory(size int, ttl time.Duration) *Memory {
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &Memory{c: b.Build()}
}

func (m *Memory) Get(_ context.Context, key string) (Entry, bool) {
	v, err := m.c.Get(key)
	if err != nil {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

func (m *Memory) Set(_ context.Context, key string, e Entry) error {
	return m.c.Set(key, e)
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Remove(key)
	return nil
}

func (m *Memory) Close() error {
	m.c.Purge()
	return nil
}
