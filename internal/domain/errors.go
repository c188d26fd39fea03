package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrDataAccess marks an unreachable store or a rejected statement.
	ErrDataAccess = errors.New("data access failed")
	// ErrNotFound marks a lookup of a missing id.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes which field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Required is a shorthand for a missing mandatory field.
func Required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// DataAccess tags err as a store failure while keeping the driver error in the chain.
func DataAccess(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataAccess) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDataAccess, err)
}
