package storage

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

// Backend names accepted by configuration.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendS3     = "s3"
)

// Backend is the narrow capability set the manifest service needs from a
// store. Each manifest is an opaque byte slice addressed by its id.
type Backend interface {
	// Name identifies the backend in logs and metrics
	Name() string

	// List returns every stored id in the backend's enumeration order
	List(ctx context.Context) ([]string, error)

	// Read returns the stored bytes for id, or an error wrapping ErrNotFound
	Read(ctx context.Context, id string) ([]byte, error)

	// Write replaces the stored bytes for id, creating it if needed
	Write(ctx context.Context, id string, data []byte) error

	// Exists reports whether id is stored
	Exists(ctx context.Context, id string) (bool, error)
}

var (
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*BadgerBackend)(nil)
	_ Backend = (*S3Backend)(nil)
)

func notFound(id string) error {
	return fmt.Errorf("%w: manifest %s", apperrors.ErrNotFound, id)
}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	switch strings.ToLower(name) {
	case BackendFile, BackendMemory, BackendBadger, BackendS3:
		return true
	}
	return false
}

func copyBytes(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
