// Package common defines the error taxonomy and small helpers shared by the
// capture, storage and reporting layers. Callers should use errors.Is to
// match the sentinel values.
package common

import (
	"errors"
	"strings"
)

var (
	// Write path: bad caller input, never persisted.
	ErrValidation = errors.New("validation error")

	// Read path: a single envelope could not be turned back into a record.
	ErrDecrypt = errors.New("decrypt error")

	// The record log medium itself is unreadable; callers treat the
	// category as empty.
	ErrStorageDegraded = errors.New("storage degraded")

	// Serialization mismatch. Fatal to a submission, skipped on read.
	ErrEncoding = errors.New("encoding fault")

	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every offending field of a submission.
type ValidationError struct {
	Fields []FieldError
}

// Add records a violation for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField reports whether field was rejected.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns nil when no field was rejected, so validators can build the
// error unconditionally.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
