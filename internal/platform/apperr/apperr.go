// Package apperr defines the typed errors returned by every public operation
// of the record store. Callers branch on them with errors.As; raw driver
// errors never cross a service boundary.
package apperr

import (
	"errors"
	"fmt"
)

// DuplicateEntityError reports a unique or composite-key violation.
type DuplicateEntityError struct {
	Entity string
	Field  string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("%s already exists: duplicate %s", e.Entity, e.Field)
}

// ForeignKeyViolationError reports a reference to a row that does not exist.
type ForeignKeyViolationError struct {
	Entity    string
	Reference string
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s references a missing %s", e.Entity, e.Reference)
}

// NotFoundError reports a lookup or update on a missing row.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports a missing or malformed field caught before storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is invalid", e.Field)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// StorageError wraps any store failure that is not an integrity violation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage failure: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Duplicate(entity, field string) error {
	return &DuplicateEntityError{Entity: entity, Field: field}
}

func ForeignKey(entity, reference string) error {
	return &ForeignKeyViolationError{Entity: entity, Reference: reference}
}

func NotFound(entity string, id fmt.Stringer) error {
	if id == nil {
		return &NotFoundError{Entity: entity}
	}
	return &NotFoundError{Entity: entity, ID: id.String()}
}

func Required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsDuplicate reports whether err is a DuplicateEntityError and returns the field.
func IsDuplicate(err error) (string, bool) {
	var d *DuplicateEntityError
	if errors.As(err, &d) {
		return d.Field, true
	}
	return "", false
}

// IsForeignKey reports whether err is a ForeignKeyViolationError and returns the reference.
func IsForeignKey(err error) (string, bool) {
	var f *ForeignKeyViolationError
	if errors.As(err, &f) {
		return f.Reference, true
	}
	return "", false
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsValidation reports whether err is a ValidationError and returns the field.
func IsValidation(err error) (string, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Field, true
	}
	return "", false
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
