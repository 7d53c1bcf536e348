package manifest

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/metrics"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/pool"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/storage"
)

// Messages returned to clients.
const (
	MessageUpdated           = "Manifest successfully updated"
	MessageNotFound          = "Manifest not found"
	MessageDeleteUnsupported = "Deleting manifests is currently not supported"
)

// Service maps manifest operations onto a storage backend. It keeps no
// state of its own: every call goes back to the backend.
type Service struct {
	backend    storage.Backend
	queue      *pool.Queue
	eventStore events.EventStorage
	logger     logr.Logger
	newID      func() string
}

// NewService wires a service. eventStore may be nil to disable the
// activity log.
func NewService(backend storage.Backend, queue *pool.Queue, eventStore events.EventStorage, logger logr.Logger) *Service {
	return &Service{
		backend:    backend,
		queue:      queue,
		eventStore: eventStore,
		logger:     logger,
		newID:      func() string { return uuid.New().String() },
	}
}

// BackendName reports which storage backend serves the manifests.
func (s *Service) BackendName() string {
	return s.backend.Name()
}

func (s *Service) do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := s.queue.Do(ctx, func() error { return fn(ctx) })
	metrics.ObserveStorage(s.backend.Name(), operation, err)
	return err
}

func (s *Service) record(event events.Event) {
	events.StoreEventSafe(s.eventStore, s.logger, event)
}

// List returns the ids of all stored manifests in backend order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.do(ctx, "list", func(ctx context.Context) error {
		var err error
		ids, err = s.backend.List(ctx)
		return err
	})
	if err != nil {
		s.logger.Error(err, "failed to list manifests", "backend", s.backend.Name())
		s.record(events.Error("", events.OperationList, "Failed to list manifests", err))
		return nil, fmt.Errorf("list manifests: %w", err)
	}
	return ids, nil
}

// Create stores doc under a freshly generated id and returns the id. doc is
// stored in compact form; there is no collision check.
func (s *Service) Create(ctx context.Context, doc []byte) (string, error) {
	data, err := Normalize(doc)
	if err != nil {
		return "", err
	}

	id := s.newID()
	err = s.do(ctx, "write", func(ctx context.Context) error {
		return s.backend.Write(ctx, id, data)
	})
	if err != nil {
		s.logger.Error(err, "failed to create manifest", "id", id)
		s.record(events.Error(id, events.OperationCreate, "Failed to create manifest", err))
		return "", fmt.Errorf("create manifest %s: %w", id, err)
	}

	s.logger.V(1).Info("manifest created", "id", id, "bytes", len(data))
	created := events.Success(id, events.OperationCreate, "Manifest created")
	created.Details = map[string]interface{}{"bytes": len(data)}
	s.record(created)
	return id, nil
}

func (s *Service) exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.do(ctx, "exists", func(ctx context.Context) error {
		var err error
		ok, err = s.backend.Exists(ctx, id)
		return err
	})
	return ok, err
}

// Get returns the stored document for id.
func (s *Service) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	ok, err := s.exists(ctx, id)
	if err != nil {
		s.logger.Error(err, "failed to check manifest", "id", id)
		s.record(events.Error(id, events.OperationRead, "Failed to check manifest", err))
		return nil, fmt.Errorf("get manifest %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: manifest %s", apperrors.ErrNotFound, id)
	}

	var data []byte
	err = s.do(ctx, "read", func(ctx context.Context) error {
		var err error
		data, err = s.backend.Read(ctx, id)
		return err
	})
	if err != nil {
		// removed between the existence check and the read
		if !isNotFound(err) {
			s.logger.Error(err, "failed to read manifest", "id", id)
			s.record(events.Error(id, events.OperationRead, "Failed to read manifest", err))
		}
		return nil, fmt.Errorf("get manifest %s: %w", id, err)
	}

	if err := checkStored(data); err != nil {
		s.logger.Error(err, "stored manifest is corrupt", "id", id)
		s.record(events.Error(id, events.OperationRead, "Stored manifest is not valid JSON", err))
		return nil, fmt.Errorf("get manifest %s: %w", id, err)
	}
	return data, nil
}

// Update overwrites an existing manifest with doc. A missing manifest is
// reported with ErrNotFound and is never created.
func (s *Service) Update(ctx context.Context, id string, doc []byte) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	data, err := Normalize(doc)
	if err != nil {
		return err
	}

	ok, err := s.exists(ctx, id)
	if err != nil {
		s.logger.Error(err, "failed to check manifest", "id", id)
		s.record(events.Error(id, events.OperationUpdate, "Failed to check manifest", err))
		return fmt.Errorf("update manifest %s: %w", id, err)
	}
	if !ok {
		s.record(events.Warning(id, events.OperationUpdate, "Update of missing manifest rejected"))
		return fmt.Errorf("%w: manifest %s", apperrors.ErrNotFound, id)
	}

	err = s.do(ctx, "write", func(ctx context.Context) error {
		return s.backend.Write(ctx, id, data)
	})
	if err != nil {
		s.logger.Error(err, "failed to update manifest", "id", id)
		s.record(events.Error(id, events.OperationUpdate, "Failed to update manifest", err))
		return fmt.Errorf("update manifest %s: %w", id, err)
	}

	s.logger.V(1).Info("manifest updated", "id", id, "bytes", len(data))
	updated := events.Success(id, events.OperationUpdate, "Manifest updated")
	updated.Details = map[string]interface{}{"bytes": len(data)}
	s.record(updated)
	return nil
}

// Delete is not supported until requests are authenticated. It never
// touches the backend.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.record(events.Warning(id, events.OperationDelete, "Delete rejected: not supported"))
	return fmt.Errorf("%w: %s", apperrors.ErrUnsupported, MessageDeleteUnsupported)
}
