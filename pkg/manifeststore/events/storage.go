package events

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/database"
	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

// DefaultBatchSize bounds the number of keys removed per cleanup transaction.
const DefaultBatchSize = 1000

const (
	allPrefix        = "events/all/"
	byManifestPrefix = "events/by-manifest/"
	byTypePrefix     = "events/by-type/"
)

type Storage struct {
	db     *database.DB
	logger logr.Logger
}

func NewStorage(db *database.DB, logger logr.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

func eventKeys(event Event) []string {
	ts := event.Timestamp.UnixNano()
	keys := []string{
		fmt.Sprintf("%s%020d/%s", allPrefix, ts, event.ID),
		fmt.Sprintf("%s%s/%020d/%s", byTypePrefix, event.Type, ts, event.ID),
	}
	if event.ManifestID != "" {
		keys = append(keys, fmt.Sprintf("%s%s/%020d/%s", byManifestPrefix, event.ManifestID, ts, event.ID))
	}
	return keys
}

func (s *Storage) StoreEvent(event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %w", apperrors.ErrEventStore, err)
	}

	items := make(map[string][]byte, 3)
	for _, key := range eventKeys(event) {
		items[key] = data
	}

	if err := s.db.BatchSet(items); err != nil {
		return fmt.Errorf("%w: failed to store event: %w", apperrors.ErrEventStore, err)
	}
	return nil
}

func (s *Storage) ListEvents(filters EventFilters) ([]Event, error) {
	var prefix string

	if filters.ManifestID != "" {
		prefix = fmt.Sprintf("%s%s/", byManifestPrefix, filters.ManifestID)
	} else if filters.Type != "" {
		prefix = fmt.Sprintf("%s%s/", byTypePrefix, filters.Type)
	} else {
		prefix = allPrefix
	}

	allItems, err := s.db.List(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list events: %w", apperrors.ErrEventStore, err)
	}

	events := make([]Event, 0, len(allItems))
	for key, data := range allItems {
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			s.logger.Error(err, "failed to unmarshal event", "key", key)
			continue
		}

		if filters.ManifestID != "" && event.ManifestID != filters.ManifestID {
			continue
		}
		if filters.Type != "" && event.Type != filters.Type {
			continue
		}
		if !filters.Since.IsZero() && event.Timestamp.Before(filters.Since) {
			continue
		}
		if !filters.Until.IsZero() && event.Timestamp.After(filters.Until) {
			continue
		}

		events = append(events, event)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return []Event{}, nil
	}
	if offset > 0 {
		events = events[offset:]
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(events) > limit {
		events = events[:limit]
	}

	return events, nil
}

func (s *Storage) GetEventsByManifest(manifestID string, limit int) ([]Event, error) {
	return s.ListEvents(EventFilters{
		ManifestID: manifestID,
		Limit:      limit,
	})
}

func (s *Storage) GetRecentErrors(limit int) ([]Event, error) {
	return s.ListEvents(EventFilters{
		Type:  EventTypeError,
		Limit: limit,
	})
}

func (s *Storage) CleanupOldEvents(before time.Time) error {
	allItems, err := s.db.List(allPrefix)
	if err != nil {
		return apperrors.WrapStorage(err, "failed to list events for cleanup")
	}

	var keysToDelete []string
	for key, data := range allItems {
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			// unreadable entries cannot be indexed elsewhere; drop the primary key
			keysToDelete = append(keysToDelete, key)
			continue
		}
		if event.Timestamp.Before(before) {
			keysToDelete = append(keysToDelete, eventKeys(event)...)
		}
	}

	deleted := 0
	for i := 0; i < len(keysToDelete); i += DefaultBatchSize {
		end := i + DefaultBatchSize
		if end > len(keysToDelete) {
			end = len(keysToDelete)
		}
		batch := keysToDelete[i:end]
		if err := s.db.BatchDelete(batch); err != nil {
			s.logger.Error(err, "failed to batch delete events", "count", len(batch))
			continue
		}
		deleted += len(batch)
	}

	s.logger.Info("Cleaned up old events", "deletedKeys", deleted, "before", before)
	return nil
}
