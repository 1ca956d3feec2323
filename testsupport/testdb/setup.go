package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
)

// InitTestDB creates a migrated store in a temporary directory.
// The store is closed when the test finishes.
func InitTestDB(t testing.TB) *repository.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wrc.db")
	store, err := repository.Open(context.Background(), path, true)
	if err != nil {
		t.Fatalf("initTestDB: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
