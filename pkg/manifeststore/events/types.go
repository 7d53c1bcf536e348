package events

import "time"

type EventType string

const (
	EventTypeError   EventType = "error"
	EventTypeSuccess EventType = "success"
	EventTypeInfo    EventType = "info"
	EventTypeWarning EventType = "warning"
)

// Operations recorded against a manifest.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationRead   = "read"
	OperationList   = "list"
	OperationDelete = "delete"
)

type Event struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Type       EventType              `json:"type"`
	ManifestID string                 `json:"manifestId,omitempty"`
	Operation  string                 `json:"operation"`
	Message    string                 `json:"message"`
	Error      string                 `json:"error,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

type EventFilters struct {
	ManifestID string
	Type       EventType
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

func ValidEventType(t EventType) bool {
	switch t {
	case EventTypeError, EventTypeSuccess, EventTypeInfo, EventTypeWarning:
		return true
	}
	return false
}
