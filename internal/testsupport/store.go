package testsupport

import (
	"context"
	"testing"

	"github.com/samiBendou/sca-automation/internal/catalog"
	"github.com/samiBendou/sca-automation/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun inserts run for tests using the provided store.
func RecordRun(t testing.TB, store *catalog.Store, run catalog.Run) *catalog.Run {
	t.Helper()

	stored, err := store.Record(context.Background(), run)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return stored
}
