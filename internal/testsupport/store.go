package testsupport

import (
	"context"
	"testing"

	"stylus/internal/config"
	"stylus/internal/logging"
	"stylus/internal/queue"
)

// MustOpenStore opens a queue.Store for tests.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	return store
}

// MustAdd enqueues a job for tests using the provided store.
func MustAdd(t testing.TB, store *queue.Store, jobType queue.JobType, params map[string]string, priority int) string {
	t.Helper()

	id, err := store.Add(context.Background(), jobType, params, priority)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return id
}
