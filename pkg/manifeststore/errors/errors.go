package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidJSON     = errors.New("invalid json")
	ErrInvalidID       = errors.New("invalid manifest id")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrStorage         = errors.New("storage error")
	ErrUnsupported     = errors.New("unsupported operation")
	ErrEventStore      = errors.New("event store error")
)
