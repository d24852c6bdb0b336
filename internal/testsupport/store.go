package testsupport

import (
	"context"
	"testing"

	"vodforge/internal/config"
	"vodforge/internal/manifest"
	"vodforge/internal/records"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRecord creates a record for tests using the provided store.
func NewRecord(t testing.TB, store *records.Store, bundleName string, m *manifest.Manifest) *records.Record {
	t.Helper()

	record, err := store.Create(context.Background(), bundleName, m)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return record
}
