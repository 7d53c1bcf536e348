package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/database"
	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/pool"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
)

// StorageComponents holds all storage-related components
type StorageComponents struct {
	Backend    storage.Backend
	Queue      *pool.Queue
	EventStore events.EventStorage

	// databases opened here, closed by Close
	dbs []*database.DB
}

// NewStorageComponents opens the manifest backend, the I/O pool and, when
// ActivityPath is set, the activity log. A badger backend and the activity
// log share one database when they point at the same path.
func NewStorageComponents(ctx context.Context, cfg *Config, logger logr.Logger) (*StorageComponents, error) {
	c := &StorageComponents{}

	backendName := strings.ToLower(cfg.Backend)
	if backendName == "" {
		backendName = storage.BackendFile
	}

	var manifestDB *database.DB
	switch backendName {
	case storage.BackendFile:
		logger.Info("Using file storage", "path", cfg.DataPath)
		backend, err := storage.NewFileBackend(cfg.DataPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		c.Backend = backend
	case storage.BackendMemory:
		logger.Info("Using in-memory storage; manifests are lost on restart")
		c.Backend = storage.NewMemoryBackend()
	case storage.BackendBadger:
		logger.Info("Opening BadgerDB", "path", cfg.DataPath)
		db, err := database.NewDB(cfg.DataPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
		}
		c.dbs = append(c.dbs, db)
		manifestDB = db
		c.Backend = storage.NewBadgerBackend(db)
	case storage.BackendS3:
		logger.Info("Using S3 storage", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
		backend, err := storage.NewS3Backend(ctx, cfg.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open S3 storage: %w", err)
		}
		c.Backend = backend
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", apperrors.ErrInvalid, cfg.Backend)
	}

	if cfg.ActivityPath != "" {
		if manifestDB != nil && samePath(cfg.ActivityPath, cfg.DataPath) {
			c.EventStore = events.NewStorage(manifestDB, logger)
		} else {
			logger.Info("Opening activity log", "path", cfg.ActivityPath)
			db, err := database.NewDB(cfg.ActivityPath, logger)
			if err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("failed to open activity log: %w", err)
			}
			c.dbs = append(c.dbs, db)
			c.EventStore = events.NewStorage(db, logger)
		}
		logger.Info("Event storage initialized")
	}

	queue, err := pool.NewQueue(cfg.Workers, PoolName, logger)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	c.Queue = queue

	return c, nil
}

// Close releases the pool and closes every database opened by
// NewStorageComponents.
func (c *StorageComponents) Close() error {
	if c.Queue != nil {
		c.Queue.Release()
	}
	var errs []error
	for _, db := range c.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
