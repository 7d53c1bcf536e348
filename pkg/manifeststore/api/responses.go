package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-logr/logr"
)

// MessageInternalError replaces the text of server-side failures so that
// storage paths never reach clients.
const MessageInternalError = "An internal error occurred"

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSONResponse(w http.ResponseWriter, logger logr.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error(err, "failed to encode JSON response")
	}
}

func WriteErrorResponse(w http.ResponseWriter, logger logr.Logger, status int, errorMsg string, message string, details map[string]string) {
	resp := ErrorResponse{
		Error:   errorMsg,
		Message: message,
		Details: details,
	}
	WriteJSONResponse(w, logger, status, resp)
}

func WriteError(w http.ResponseWriter, logger logr.Logger, err error) {
	if err == nil {
		WriteErrorResponse(w, logger, http.StatusInternalServerError, "unknown_error", "An unknown error occurred", nil)
		return
	}

	code := extractErrorCode(err)
	status := httpStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = MessageInternalError
	}

	WriteErrorResponse(w, logger, status, code, message, nil)
}

// WriteRawJSON writes an already serialized JSON document.
func WriteRawJSON(w http.ResponseWriter, logger logr.Logger, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Error(err, "failed to write JSON response")
	}
}
