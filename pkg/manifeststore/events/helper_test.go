package events

import (
	"testing"

	"github.com/go-logr/logr"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/database"
)

func TestStoreEventSafe(t *testing.T) {
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	logger := logr.Discard()
	storage := NewStorage(db, logger)

	StoreEventSafe(storage, logger, Success("abc-123", OperationCreate, "Manifest created"))

	events, err := storage.GetEventsByManifest("abc-123", 10)
	if err != nil {
		t.Fatalf("GetEventsByManifest() error = %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("StoreEventSafe() stored %d events, want 1", len(events))
	}
	if events[0].Message != "Manifest created" {
		t.Errorf("stored event message = %v, want Manifest created", events[0].Message)
	}
}

func TestStoreEventSafe_NilStorage(t *testing.T) {
	// Should not panic with nil storage
	StoreEventSafe(nil, logr.Discard(), Success("abc", OperationCreate, "Manifest created"))
}

func TestStoreEventSafe_StorageError(t *testing.T) {
	db, err := database.NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	logger := logr.Discard()
	storage := NewStorage(db, logger)

	// Close the DB to cause storage errors
	db.Close()

	// Should not panic, just log the error
	StoreEventSafe(storage, logger, Success("abc", OperationCreate, "Manifest created"))
}
