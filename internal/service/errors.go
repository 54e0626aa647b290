package service

import (
	"errors"
	"fmt"

	"bi-admin/internal/repository"
	"bi-admin/pkg/auth"

	"github.com/google/uuid"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrPersistence     = errors.New("persistence failure")
)

var (
	ErrInvalidAction     = fmt.Errorf("%w: action must be resolve, ignore or reopen", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: status must be pending, resolved or ignored", ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: transition not allowed", ErrValidation)
	ErrInvalidFeedback   = fmt.Errorf("%w: feedback must be positive or negative", ErrValidation)
	ErrMissingContextID  = fmt.Errorf("%w: context_id is required", ErrValidation)
	ErrEmptyContent      = fmt.Errorf("%w: content is required", ErrValidation)
	ErrMissingQueryID    = fmt.Errorf("%w: query_id is required", ErrValidation)
	ErrInvalidOffset     = fmt.Errorf("%w: offset must not be negative", ErrValidation)
	ErrExampleAndAnswer  = fmt.Errorf("%w: send either training_example_id or answer, not both", ErrValidation)
)

// PersistenceError wraps a store failure. It matches ErrPersistence and
// unwraps to the driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// storeError classifies an error returned by a repository.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case errors.Is(err, repository.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return &PersistenceError{Op: op, Err: err}
}

func requireIdentity(identity auth.Identity) error {
	if identity.UserID == uuid.Nil || identity.CompanyGroupID == uuid.Nil {
		return ErrUnauthenticated
	}
	return nil
}
