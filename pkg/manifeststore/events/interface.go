package events

import "time"

// EventStorage records what happened to manifests. It is an audit trail
// only; manifest content never lives here.
type EventStorage interface {
	// StoreEvent stores a single event
	StoreEvent(event Event) error

	// ListEvents lists events matching the provided filters, newest first
	ListEvents(filters EventFilters) ([]Event, error)

	// GetEventsByManifest retrieves events for one manifest id
	GetEventsByManifest(manifestID string, limit int) ([]Event, error)

	// GetRecentErrors retrieves recent error events
	GetRecentErrors(limit int) ([]Event, error)

	// CleanupOldEvents removes events older than the specified time
	CleanupOldEvents(before time.Time) error
}

// Ensure *Storage implements EventStorage interface
var _ EventStorage = (*Storage)(nil)
