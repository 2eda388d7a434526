package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the service, stores and CLI. Callers match them
// with errors.Is; typed errors below unwrap to these.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidSpan         = errors.New("invalid span")
	ErrEmptyAnnotationText = errors.New("annotation text is empty")
	ErrValidation          = errors.New("validation error")
	ErrConflict            = errors.New("concurrent modification")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string // "document", "segment", "annotation", "redaction", "tm entry"
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound is shorthand for a NotFoundError.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation is shorthand for a ValidationError.
func NewValidation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
