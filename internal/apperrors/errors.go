package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrValidation          = errors.New("validation error")
	ErrUniquenessViolation = errors.New("uniqueness violation")
)

// ValidationError lists every field of an entity that failed validation.
// Labels holds the human readable name of the fields that have one.
type ValidationError struct {
	Entity string
	Fields validation.Errors
	Labels map[string]string
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: validation error: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FieldNames returns the offending field names in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Label returns the human readable name of a field, or "" if it has none.
func (e *ValidationError) Label(name string) string {
	return e.Labels[name]
}

// NewValidationError converts the result of validation.ValidateStruct into a
// ValidationError. Nil stays nil, and errors that are not field errors are
// returned unchanged.
func NewValidationError(entity string, labels map[string]string, err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Entity: entity, Fields: fields, Labels: labels}
	}
	return err
}

// UniquenessError reports a write rejected by a unique constraint.
type UniquenessError struct {
	Entity     string
	Constraint string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s: duplicate %s", e.Entity, e.Constraint)
}

func (e *UniquenessError) Unwrap() error {
	return ErrUniquenessViolation
}

// NotFound wraps ErrNotFound with the entity and identifier that was looked up.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}
