package api

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
)

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h.eventStore == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: activity log not enabled", apperrors.ErrEventStore))
		return
	}

	filters, err := ParseQueryParams(r)
	if err != nil {
		WriteError(w, h.logger, fmt.Errorf("%w: invalid query parameters: %w", apperrors.ErrInvalid, err))
		return
	}

	eventList, err := h.eventStore.ListEvents(filters)
	if err != nil {
		h.logger.Error(err, "failed to list events")
		WriteError(w, h.logger, err)
		return
	}
	if eventList == nil {
		eventList = []events.Event{}
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, EventListResponse{
		Events: eventList,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

func (h *Handler) GetRecentErrors(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit <= 0 {
			WriteError(w, h.logger, fmt.Errorf("%w: limit must be a positive integer", apperrors.ErrInvalid))
			return
		}
		if parsedLimit > MaxEventLimit {
			WriteError(w, h.logger, fmt.Errorf("%w: limit cannot exceed %d", apperrors.ErrInvalid, MaxEventLimit))
			return
		}
		limit = parsedLimit
	}

	if h.eventStore == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: activity log not enabled", apperrors.ErrEventStore))
		return
	}

	eventList, err := h.eventStore.GetRecentErrors(limit)
	if err != nil {
		h.logger.Error(err, "failed to get recent errors")
		WriteError(w, h.logger, err)
		return
	}
	if eventList == nil {
		eventList = []events.Event{}
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, EventListResponse{Events: eventList, Limit: limit})
}
