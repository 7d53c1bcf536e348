package api

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: time.Now(),
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, status)
}

// Readyz lists the storage backend to prove it is reachable. The activity
// log is reported but never makes the service unready.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:     "healthy",
		Version:    h.version,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentStatus),
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultHealthCheckTimeout)
	defer cancel()

	if _, err := h.service.List(ctx); err != nil {
		h.logger.Error(err, "readiness check failed", "backend", h.service.BackendName())
		status.Components["storage"] = ComponentStatus{
			Status:  "unhealthy",
			Message: "Storage backend " + h.service.BackendName() + " is unavailable",
		}
		status.Status = "unhealthy"
	} else {
		status.Components["storage"] = ComponentStatus{
			Status:  "healthy",
			Message: h.service.BackendName(),
		}
	}

	if h.eventStore != nil {
		_, err := h.eventStore.GetRecentErrors(1)
		if err != nil {
			status.Components["eventStore"] = ComponentStatus{
				Status:  "unavailable",
				Message: err.Error(),
			}
		} else {
			status.Components["eventStore"] = ComponentStatus{Status: "available"}
		}
	} else {
		status.Components["eventStore"] = ComponentStatus{
			Status:  "disabled",
			Message: "Activity log not configured",
		}
	}

	statusCode := http.StatusOK
	if status.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSONResponse(w, h.logger, statusCode, status)
}
