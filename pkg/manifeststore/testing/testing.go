package testing

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/database"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/manifest"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/pool"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
)

// NewTestLogger creates a test logger
func NewTestLogger() logr.Logger {
	zapLog, _ := zap.NewDevelopment()
	return zapr.NewLogger(zapLog)
}

// NewTestDB creates a test database
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	return db
}

// NewTestEventStore creates a test event store
func NewTestEventStore(t *testing.T) events.EventStorage {
	db := NewTestDB(t)
	return events.NewStorage(db, logr.Discard())
}

// NewTestQueue creates a small worker pool released at test cleanup
func NewTestQueue(t *testing.T) *pool.Queue {
	t.Helper()
	q, err := pool.NewQueue(4, "test", logr.Discard())
	if err != nil {
		t.Fatalf("failed to create test queue: %v", err)
	}
	t.Cleanup(q.Release)
	return q
}

// NewTestFileBackend creates a file backend in a temporary directory and
// returns it with its root path
func NewTestFileBackend(t *testing.T) (*storage.FileBackend, string) {
	t.Helper()
	root := t.TempDir()
	backend, err := storage.NewFileBackend(root, logr.Discard())
	if err != nil {
		t.Fatalf("failed to create file backend: %v", err)
	}
	return backend, root
}

// NewTestService creates a manifest service over backend. eventStore may be
// nil.
func NewTestService(t *testing.T, backend storage.Backend, eventStore events.EventStorage) *manifest.Service {
	t.Helper()
	return manifest.NewService(backend, NewTestQueue(t), eventStore, logr.Discard())
}
