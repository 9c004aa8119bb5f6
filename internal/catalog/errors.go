package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches exactly one of them via
// errors.Is, so callers can branch on the kind without knowing the type.
var (
	ErrNotFound   = errors.New("not found")
	ErrInvalid    = errors.New("invalid input")
	ErrEnrichment = errors.New("enrichment failed")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError reports bad input shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// NotFoundError reports an id that does not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps a failed read or write of the underlying store.
type StorageError struct {
	Op     string
	Entity string
	ID     string
	Err    error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// EnrichmentError reports a failed or timed out metadata call. It is never
// returned from CreateItem.
type EnrichmentError struct {
	URL string
	Err error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrich %s: %v", e.URL, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

func (e *EnrichmentError) Is(target error) bool { return target == ErrEnrichment }

func notFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewNotFound is used by store implementations.
func NewNotFound(entity, id string) error { return notFound(entity, id) }

// NewStorageError is used by store implementations.
func NewStorageError(op, entity, id string, err error) error {
	return &StorageError{Op: op, Entity: entity, ID: id, Err: err}
}
