package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Cache {
	t.Helper()
	fs, err := NewFilesystem(filepath.Join(t.TempDir(), "badger"), time.Hour)
	require.NoError(t, err)
	sq, err := NewSqlite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	ret := map[string]Cache{
		"memory":     NewMemory(10, time.Hour),
		"filesystem": fs,
		"sqlite":     sq,
	}
	t.Cleanup(func() {
		for _, c := range ret {
			_ = c.Close()
		}
	})
	return ret
}

func TestBackends(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(time.Now().UnixMilli())
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := c.Get(ctx, "https://x/a?b=1")
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "https://x/a?b=1", Entry{Body: []byte(`{"a":1}`), FetchedAt: now}))
			e, ok := c.Get(ctx, "https://x/a?b=1")
			require.True(t, ok)
			assert.Equal(t, `{"a":1}`, string(e.Body))
			assert.True(t, now.Equal(e.FetchedAt))

			// replace
			later := now.Add(time.Minute)
			require.NoError(t, c.Set(ctx, "https://x/a?b=1", Entry{Body: []byte(`{"a":2}`), FetchedAt: later}))
			e, _ = c.Get(ctx, "https://x/a?b=1")
			assert.Equal(t, `{"a":2}`, string(e.Body))

			require.NoError(t, c.Delete(ctx, "https://x/a?b=1"))
			_, ok = c.Get(ctx, "https://x/a?b=1")
			assert.False(t, ok)
		})
	}
}

func TestEntryExpired(t *testing.T) {
	now := time.Now()
	e := Entry{FetchedAt: now.Add(-2 * time.Minute)}
	assert.True(t, e.Expired(now, time.Minute))
	assert.False(t, e.Expired(now, time.Hour))
	assert.False(t, e.Expired(now, 0))
}

func TestNew(t *testing.T) {
	c, err := New(Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(Config{Backend: BackendFilesystem})
	assert.Error(t, err)

	_, err = ParseBackend("redis")
	assert.Error(t, err)
	b, err := ParseBackend("sqlite")
	require.NoError(t, err)
	assert.Equal(t, BackendSqlite, b)
}
