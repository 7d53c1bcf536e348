package errors

import (
	"errors"
	"testing"
)

func TestWrapStorage(t *testing.T) {
	originalErr := errors.New("write failed")
	wrapped := WrapStorage(originalErr, "failed to write manifest")

	if wrapped == nil {
		t.Fatal("WrapStorage() should not return nil")
	}

	if !errors.Is(wrapped, ErrStorage) {
		t.Error("WrapStorage() should wrap with ErrStorage")
	}

	if !errors.Is(wrapped, originalErr) {
		t.Error("WrapStorage() should preserve original error")
	}

	// Test nil error
	if WrapStorage(nil, "context") != nil {
		t.Error("WrapStorage() should return nil for nil error")
	}
}

func TestWrapInvalid(t *testing.T) {
	originalErr := errors.New("invalid input")
	wrapped := WrapInvalid(originalErr, "invalid manifest id")

	if wrapped == nil {
		t.Fatal("WrapInvalid() should not return nil")
	}

	if !errors.Is(wrapped, ErrInvalid) {
		t.Error("WrapInvalid() should wrap with ErrInvalid")
	}

	if !errors.Is(wrapped, originalErr) {
		t.Error("WrapInvalid() should preserve original error")
	}

	if WrapInvalid(nil, "context") != nil {
		t.Error("WrapInvalid() should return nil for nil error")
	}
}

func TestWrapNotFound(t *testing.T) {
	originalErr := errors.New("no such file")
	wrapped := WrapNotFound(originalErr, "manifest not found")

	if wrapped == nil {
		t.Fatal("WrapNotFound() should not return nil")
	}

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("WrapNotFound() should wrap with ErrNotFound")
	}

	if !errors.Is(wrapped, originalErr) {
		t.Error("WrapNotFound() should preserve original error")
	}

	if WrapNotFound(nil, "context") != nil {
		t.Error("WrapNotFound() should return nil for nil error")
	}
}

func TestWrapInvalidJSON(t *testing.T) {
	originalErr := errors.New("unexpected end of JSON input")
	wrapped := WrapInvalidJSON(originalErr, "failed to parse request body")

	if wrapped == nil {
		t.Fatal("WrapInvalidJSON() should not return nil")
	}

	if !errors.Is(wrapped, ErrInvalidJSON) {
		t.Error("WrapInvalidJSON() should wrap with ErrInvalidJSON")
	}

	if !errors.Is(wrapped, originalErr) {
		t.Error("WrapInvalidJSON() should preserve original error")
	}

	if WrapInvalidJSON(nil, "context") != nil {
		t.Error("WrapInvalidJSON() should return nil for nil error")
	}
}
