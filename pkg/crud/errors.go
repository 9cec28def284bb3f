package crud

import (
	"errors"
	"strings"

	"github.com/goliatone/go-relations/pkg/validation"
)

var (
	// ErrIntegrity matches every *IntegrityError.
	ErrIntegrity = errors.New("crud: integrity check failed")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("crud: validation failed")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("crud: storage failed")
	// ErrUnknownType is returned when a request names a type outside the
	// relation.
	ErrUnknownType = errors.New("crud: type is not part of the relation")
	// ErrInvalidRequest is returned for requests missing required input.
	ErrInvalidRequest = errors.New("crud: invalid request")
)

// IntegrityError reports a failed token check. Nothing was persisted.
type IntegrityError struct {
	Scope string
	Err   error
}

func (e *IntegrityError) Error() string {
	return "crud: integrity check failed for " + e.Scope
}

func (e *IntegrityError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrIntegrity}
	}
	return []error{ErrIntegrity, e.Err}
}

// ValidationError reports a submission rejected by the configured rule.
// Message is the text shown to the user.
type ValidationError struct {
	Type    string
	Message string
	Issues  []validation.Issue
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StorageError carries the messages reported by a failed storage call.
type StorageError struct {
	Messages []string
	Err      error
}

func (e *StorageError) Error() string {
	if len(e.Messages) == 0 {
		return ErrStorage.Error()
	}
	return "crud: " + strings.Join(e.Messages, "; ")
}

func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStorage}
	}
	return []error{ErrStorage, e.Err}
}
