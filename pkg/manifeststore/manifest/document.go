package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
)

// MaxIDLength bounds ids accepted from request paths.
const MaxIDLength = 255

// ValidateID rejects ids that could escape the storage directory or that
// the server could never have generated a file for.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", apperrors.ErrInvalidID)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: id must be %d characters or less", apperrors.ErrInvalidID, MaxIDLength)
	}
	if strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: id must not contain path separators", apperrors.ErrInvalidID)
	}
	if strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: id must not start with '.'", apperrors.ErrInvalidID)
	}
	return nil
}

// Normalize checks that doc is a single JSON value and returns its compact
// serialization. Member order and number literals are preserved.
func Normalize(doc []byte) ([]byte, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return nil, fmt.Errorf("%w: manifest body is empty", apperrors.ErrInvalidJSON)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: JSON syntax error at position %d: %w", apperrors.ErrInvalidJSON, syntaxErr.Offset, err)
		}
		return nil, apperrors.WrapInvalidJSON(err, "manifest is not valid JSON")
	}
	return buf.Bytes(), nil
}

func checkStored(data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: stored manifest is not valid JSON", apperrors.ErrStorage)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
