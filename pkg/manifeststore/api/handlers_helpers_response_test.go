package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestWriteRawJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteRawJSON(w, logr.Discard(), http.StatusOK, []byte(`{"b":1,"a":2}`))

	if w.Code != http.StatusOK {
		t.Errorf("WriteRawJSON() status code = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("WriteRawJSON() Content-Type = %v, want application/json", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != `{"b":1,"a":2}` {
		t.Errorf("WriteRawJSON() body = %s, want the document unchanged", w.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"nil", nil, http.StatusInternalServerError, "unknown_error", "An unknown error occurred"},
		{"not found", fmt.Errorf("%w: manifest x", apperrors.ErrNotFound), http.StatusNotFound, "not_found", "not found: manifest x"},
		{"invalid json", apperrors.WrapInvalidJSON(errors.New("eof"), "bad body"), http.StatusBadRequest, "invalid_json", ""},
		{"invalid id", fmt.Errorf("%w: id cannot be empty", apperrors.ErrInvalidID), http.StatusBadRequest, "invalid_id", ""},
		{"invalid request", fmt.Errorf("%w: bad form", apperrors.ErrInvalidRequest), http.StatusBadRequest, "invalid_request", ""},
		{"validation", fmt.Errorf("%w: limit", apperrors.ErrInvalid), http.StatusBadRequest, "validation_error", ""},
		{"too large", fmt.Errorf("%w: 10 bytes", apperrors.ErrPayloadTooLarge), http.StatusRequestEntityTooLarge, "payload_too_large", ""},
		{"unsupported", fmt.Errorf("%w: delete", apperrors.ErrUnsupported), http.StatusNotImplemented, "not_supported", ""},
		{"storage", apperrors.WrapStorage(errors.New("open /data/x"), "read"), http.StatusInternalServerError, "storage_error", MessageInternalError},
		{"event store", fmt.Errorf("%w: down", apperrors.ErrEventStore), http.StatusServiceUnavailable, "event_store_unavailable", ""},
		{"deadline", fmt.Errorf("queue: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", MessageInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, logr.Discard(), tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("WriteError() status code = %v, want %v", w.Code, tt.wantStatus)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("WriteError() response is not valid JSON: %v", err)
			}
			if resp.Error != tt.wantCode {
				t.Errorf("WriteError() code = %v, want %v", resp.Error, tt.wantCode)
			}
			if tt.wantMessage != "" && resp.Message != tt.wantMessage {
				t.Errorf("WriteError() message = %v, want %v", resp.Message, tt.wantMessage)
			}
		})
	}
}
