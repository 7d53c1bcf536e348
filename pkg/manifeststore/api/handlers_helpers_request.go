package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/manifest"
)

const formContentType = "application/x-www-form-urlencoded"

// manifestID returns the decoded {id} path parameter. chi matches against
// RawPath when the request has one, so only then is the parameter still
// escaped.
func manifestID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return "", fmt.Errorf("%w: malformed id: %w", apperrors.ErrInvalidID, err)
		}
		id = unescaped
	}
	if err := manifest.ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// readManifestBody reads at most maxBody bytes. Form bodies are converted to
// a JSON object; anything else is passed through for JSON validation.
func (h *Handler) readManifestBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", apperrors.ErrPayloadTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: failed to read request body: %w", apperrors.ErrInvalidRequest, err)
	}

	if isFormContent(r.Header.Get("Content-Type")) {
		return formToJSON(data)
	}
	return data, nil
}

func isFormContent(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == formContentType
}

// formToJSON maps each key to its value, or to an array of values when the
// key repeats.
func formToJSON(data []byte) ([]byte, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid form body: %w", apperrors.ErrInvalidRequest, err)
	}

	doc := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			doc[key] = vals[0]
		} else {
			doc[key] = vals
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode form body: %w", apperrors.ErrInvalidRequest, err)
	}
	return out, nil
}
