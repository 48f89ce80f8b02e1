package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrIllegalEntity is matched by every *IllegalEntityError.
	ErrIllegalEntity = errors.New("illegal entity")

	// ErrServiceFailure is matched by every *ServiceFailure.
	ErrServiceFailure = errors.New("service failure")

	// ErrIntegrityViolation signals more than one row for a single identifier.
	ErrIntegrityViolation = errors.New("internal integrity violation")

	// ErrDanglingReference signals a loan whose reader or book no longer exists.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrUniqueViolation is returned when a unique constraint fails
	ErrUniqueViolation = errors.New("unique violation")
)

// ValidationError reports input that breaks a business rule. It is raised
// before any storage interaction.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: field %q: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IllegalEntityError reports an identifier state that does not fit the
// requested operation: set on create, unset on update/delete, or unknown to
// the store.
type IllegalEntityError struct {
	Entity  string
	ID      *int64
	Message string
}

func (e *IllegalEntityError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("illegal %s %d: %s", e.Entity, *e.ID, e.Message)
	}
	return fmt.Sprintf("illegal %s: %s", e.Entity, e.Message)
}

func (e *IllegalEntityError) Is(target error) bool {
	return target == ErrIllegalEntity
}

// ServiceFailure wraps a storage error or an internal integrity fault.
type ServiceFailure struct {
	Op  string
	Err error
}

func (e *ServiceFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceFailure) Unwrap() error {
	return e.Err
}

func (e *ServiceFailure) Is(target error) bool {
	return target == ErrServiceFailure
}

// NewValidationError creates a new ValidationError
func NewValidationError(entity, field, message string) error {
	return &ValidationError{Entity: entity, Field: field, Message: message}
}

// NewIllegalEntityError creates a new IllegalEntityError
func NewIllegalEntityError(entity string, id *int64, message string) error {
	return &IllegalEntityError{Entity: entity, ID: id, Message: message}
}

// NewServiceFailure creates a new ServiceFailure
func NewServiceFailure(op string, err error) error {
	return &ServiceFailure{Op: op, Err: err}
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsIllegalEntity checks if an error is an illegal entity error
func IsIllegalEntity(err error) bool {
	return errors.Is(err, ErrIllegalEntity)
}

// IsServiceFailure checks if an error is a service failure
func IsServiceFailure(err error) bool {
	return errors.Is(err, ErrServiceFailure)
}
