package testutil

import (
	"path/filepath"
	"testing"

	"github.com/dalemusser/stratashare/internal/app/store/localcache"
	"go.uber.org/zap"
)

// TempCache opens a local cache database in a per-test temp directory.
// The store is closed when the test completes.
func TempCache(t *testing.T) *localcache.Store {
	t.Helper()

	cache, err := localcache.Open(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open temp cache: %v", err)
	}
	t.Cleanup(func() {
		if err := cache.Close(); err != nil {
			t.Logf("warning: failed to close temp cache: %v", err)
		}
	})
	return cache
}
