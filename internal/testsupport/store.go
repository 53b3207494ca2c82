package testsupport

import (
	"context"
	"testing"

	"primetime/internal/config"
	"primetime/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates a new queue item for tests using the provided store.
func NewItem(t testing.TB, store *queue.Store, filename, platform string) *queue.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), filename, "", platform, "")
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
