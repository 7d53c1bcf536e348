package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

// FileBackend keeps one file per manifest in a flat directory. The file name
// is the manifest id and the content is the raw document.
type FileBackend struct {
	root   string
	logger logr.Logger
}

func NewFileBackend(root string, logger logr.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: storage create directory: failed to create manifest directory at %s: %w", apperrors.ErrStorage, root, err)
	}
	return &FileBackend{
		root:   root,
		logger: logger,
	}, nil
}

func (b *FileBackend) Name() string {
	return BackendFile
}

// Root returns the storage directory.
func (b *FileBackend) Root() string {
	return b.root
}

func (b *FileBackend) path(id string) string {
	return filepath.Join(b.root, id)
}

func (b *FileBackend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, apperrors.WrapStorage(err, "read manifest directory")
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		// hidden entries are in-flight temp files
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}

func (b *FileBackend) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperrors.WrapStorage(err, "read manifest "+id)
	}
	return data, nil
}

// Write replaces the manifest through a temp file and rename so readers
// never observe a partially written document.
func (b *FileBackend) Write(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.root, "."+id+".tmp-*")
	if err != nil {
		return apperrors.WrapStorage(err, "create temp file for manifest "+id)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			b.logger.V(1).Info("failed to remove temp file", "path", tmpName, "error", rmErr)
		}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return apperrors.WrapStorage(err, "write manifest "+id)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return apperrors.WrapStorage(err, "sync manifest "+id)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.WrapStorage(err, "close manifest "+id)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return apperrors.WrapStorage(err, "chmod manifest "+id)
	}
	if err := os.Rename(tmpName, b.path(id)); err != nil {
		cleanup()
		return apperrors.WrapStorage(err, "rename manifest "+id)
	}
	return nil
}

func (b *FileBackend) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(b.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.WrapStorage(err, "stat manifest "+id)
	}
	return info.Mode().IsRegular(), nil
}
