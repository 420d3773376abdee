package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAction  = errors.New("unknown session manage action")
	ErrStartInFlight  = errors.New("a start for this session is already in progress")
	ErrMissingPayload = errors.New("missing session_manage payload")
)

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.EntityType, e.ID)
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFoundError *notFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}

type validationError struct {
	Field  string
	Reason string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &validationError{Field: field, Reason: reason}
}

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var validationError *validationError
	ok := errors.As(err, &validationError)
	return ok
}
