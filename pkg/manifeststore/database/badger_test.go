package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
)

func TestDBGetSet(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	testKey := "manifests/abc-123"
	testValue := []byte(`{"title":"A"}`)

	err = db.Set(testKey, testValue)
	if err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	val, err := db.Get(testKey)
	if err != nil {
		t.Fatalf("failed to get value: %v", err)
	}

	if string(val) != string(testValue) {
		t.Errorf("expected %s, got %s", string(testValue), string(val))
	}
}

func TestDBGetNotFound(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	_, err = db.Get("manifests/nonexistent")
	if err == nil || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestDBHas(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	ok, err := db.Has("manifests/abc")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if ok {
		t.Error("Has() = true for missing key")
	}

	if err := db.Set("manifests/abc", []byte("{}")); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	ok, err = db.Has("manifests/abc")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if !ok {
		t.Error("Has() = false for present key")
	}
}

func TestDBDelete(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	testKey := "manifests/abc-123"

	if err := db.Set(testKey, []byte("{}")); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	if err := db.Delete(testKey); err != nil {
		t.Fatalf("failed to delete value: %v", err)
	}

	_, err = db.Get(testKey)
	if err == nil || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found error after delete, got %v", err)
	}
}

func TestDBList(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	db.Set("manifests/one", []byte(`{"n":1}`))
	db.Set("manifests/two", []byte(`{"n":2}`))
	db.Set("events/00000000000000000001/x", []byte(`{}`))

	all, err := db.List("")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}

	manifests, err := db.List("manifests/")
	if err != nil {
		t.Fatalf("failed to list with prefix: %v", err)
	}
	if len(manifests) != 2 {
		t.Errorf("expected 2 items with prefix, got %d", len(manifests))
	}
}

func TestDBKeys(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	db.Set("manifests/b", []byte(`{}`))
	db.Set("manifests/a", []byte(`{}`))
	db.Set("other/c", []byte(`{}`))

	keys, err := db.Keys("manifests/")
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "manifests/a" || keys[1] != "manifests/b" {
		t.Errorf("Keys() = %v, want [manifests/a manifests/b]", keys)
	}
}

func TestDBBatchSetAndDelete(t *testing.T) {
	db, err := NewTestDB(t)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	items := map[string][]byte{
		"events/1": []byte("a"),
		"events/2": []byte("b"),
	}
	if err := db.BatchSet(items); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}

	keys, _ := db.Keys("events/")
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys after BatchSet, got %d", len(keys))
	}

	if err := db.BatchDelete([]string{"events/1", "events/2"}); err != nil {
		t.Fatalf("BatchDelete() error = %v", err)
	}

	keys, _ = db.Keys("events/")
	if len(keys) != 0 {
		t.Errorf("expected no keys after BatchDelete, got %v", keys)
	}
}

func TestDBPersistence(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test-db")
	logger := logr.Discard()

	testKey := "manifests/abc-123"
	testValue := []byte(`{"title":"A"}`)

	db1, err := NewDB(dbPath, logger)
	if err != nil {
		t.Fatalf("failed to create DB: %v", err)
	}
	err = db1.Set(testKey, testValue)
	if err != nil {
		t.Fatalf("failed to set value: %v", err)
	}
	db1.Close()

	db2, err := NewDB(dbPath, logger)
	if err != nil {
		t.Fatalf("failed to reopen DB: %v", err)
	}
	defer db2.Close()

	val, err := db2.Get(testKey)
	if err != nil {
		t.Fatalf("failed to get value after reopen: %v", err)
	}

	if string(val) != string(testValue) {
		t.Errorf("expected %s, got %s", string(testValue), string(val))
	}
}

func TestDBCloseTwice(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "db"), logr.Discard())
	if err != nil {
		t.Fatalf("failed to create DB: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNewDBCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "new-dir", "test-db")
	logger := logr.Discard()

	db, err := NewDB(dbPath, logger)
	if err != nil {
		t.Fatalf("failed to create DB: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("directory was not created: %v", err)
	}
}
