package api

import (
	"time"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
)

type HealthStatus struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ManifestReference points at one stored manifest.
type ManifestReference struct {
	URI string `json:"uri"`
}

type ManifestListResponse struct {
	Manifests []ManifestReference `json:"manifests"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// UnsupportedResponse is returned for operations the service refuses.
type UnsupportedResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

type EventListResponse struct {
	Events []events.Event `json:"events"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
