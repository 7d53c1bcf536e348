package api

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, apperrors.ErrPayloadTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, apperrors.ErrInvalid) || errors.Is(err, apperrors.ErrInvalidJSON) ||
		errors.Is(err, apperrors.ErrInvalidID) || errors.Is(err, apperrors.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, apperrors.ErrUnsupported) {
		return http.StatusNotImplemented
	}
	if errors.Is(err, apperrors.ErrStorage) {
		return http.StatusInternalServerError
	}
	if errors.Is(err, apperrors.ErrEventStore) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	return http.StatusInternalServerError
}

func extractErrorCode(err error) string {
	if err == nil {
		return "unknown_error"
	}

	if errors.Is(err, apperrors.ErrNotFound) {
		return "not_found"
	}
	if errors.Is(err, apperrors.ErrPayloadTooLarge) {
		return "payload_too_large"
	}
	if errors.Is(err, apperrors.ErrInvalidJSON) {
		return "invalid_json"
	}
	if errors.Is(err, apperrors.ErrInvalidID) {
		return "invalid_id"
	}
	if errors.Is(err, apperrors.ErrInvalidRequest) {
		return "invalid_request"
	}
	if errors.Is(err, apperrors.ErrInvalid) {
		return "validation_error"
	}
	if errors.Is(err, apperrors.ErrUnsupported) {
		return "not_supported"
	}
	if errors.Is(err, apperrors.ErrStorage) {
		return "storage_error"
	}
	if errors.Is(err, apperrors.ErrEventStore) {
		return "event_store_unavailable"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	return "internal_error"
}
