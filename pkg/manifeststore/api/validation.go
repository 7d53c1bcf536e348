package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/events"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/manifest"
)

func ParseQueryParams(r *http.Request) (events.EventFilters, error) {
	return ParseEventQueryParams(r.URL.Query())
}

func ParseEventQueryParams(queryParams map[string][]string) (events.EventFilters, error) {
	filters := events.EventFilters{}

	if id := getFirstQueryParam(queryParams, "id"); id != "" {
		if err := manifest.ValidateID(id); err != nil {
			return filters, fmt.Errorf("%w: invalid id parameter: %w", apperrors.ErrInvalid, err)
		}
		filters.ManifestID = id
	}

	if typeStr := getFirstQueryParam(queryParams, "type"); typeStr != "" {
		eventType := events.EventType(typeStr)
		if !events.ValidEventType(eventType) {
			return filters, fmt.Errorf("%w: invalid event type: %s (must be one of: error, success, info, warning)", apperrors.ErrInvalid, typeStr)
		}
		filters.Type = eventType
	}

	if sinceStr := getFirstQueryParam(queryParams, "since"); sinceStr != "" {
		t, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return filters, fmt.Errorf("%w: invalid since parameter format (use RFC3339): %w", apperrors.ErrInvalid, err)
		}
		filters.Since = t
	}

	if untilStr := getFirstQueryParam(queryParams, "until"); untilStr != "" {
		t, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return filters, fmt.Errorf("%w: invalid until parameter format (use RFC3339): %w", apperrors.ErrInvalid, err)
		}
		filters.Until = t
	}

	if !filters.Since.IsZero() && !filters.Until.IsZero() && filters.Until.Before(filters.Since) {
		return filters, fmt.Errorf("%w: until must not be before since", apperrors.ErrInvalid)
	}

	if limitStr := getFirstQueryParam(queryParams, "limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return filters, fmt.Errorf("%w: invalid limit parameter: must be a positive integer", apperrors.ErrInvalid)
		}
		if limit > MaxEventLimit {
			return filters, fmt.Errorf("%w: limit cannot exceed %d", apperrors.ErrInvalid, MaxEventLimit)
		}
		filters.Limit = limit
	} else {
		filters.Limit = DefaultEventLimit
	}

	if offsetStr := getFirstQueryParam(queryParams, "offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return filters, fmt.Errorf("%w: invalid offset parameter: must be a non-negative integer", apperrors.ErrInvalid)
		}
		filters.Offset = offset
	}

	return filters, nil
}

func getFirstQueryParam(queryParams map[string][]string, key string) string {
	if values, ok := queryParams[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
