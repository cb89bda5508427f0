package testsupport

import (
	"context"
	"testing"

	"scribe/internal/config"
	"scribe/internal/queue"
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

// SeedVideo inserts a pending video item for tests using the provided store.
func SeedVideo(t testing.TB, store *queue.Store, item queue.Item) *queue.Item {
	t.Helper()

	if item.URL == "" {
		item.URL = "https://www.youtube.com/watch?v=" + item.VideoID
	}
	if _, err := store.UpsertIfAbsent(context.Background(), item); err != nil {
		t.Fatalf("store.UpsertIfAbsent: %v", err)
	}
	stored, err := store.GetByID(context.Background(), item.VideoID)
	if err != nil {
		t.Fatalf("store.GetByID: %v", err)
	}
	if stored == nil {
		t.Fatalf("seeded video %s not found", item.VideoID)
	}
	return stored
}
