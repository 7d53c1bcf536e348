package events

import "github.com/go-logr/logr"

// StoreEventSafe records event when storage is configured. Failures are
// logged and never reach the caller.
func StoreEventSafe(storage EventStorage, logger logr.Logger, event Event) {
	if storage == nil {
		return
	}
	if err := storage.StoreEvent(event); err != nil {
		logger.V(1).Info("failed to store event",
			"error", err,
			"type", event.Type,
			"manifestId", event.ManifestID,
			"message", event.Message)
	}
}
