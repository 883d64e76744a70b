package domain

import "errors"

var (
	// ErrInvalidMessage is returned when a delivery cannot be decoded or is missing fields
	ErrInvalidMessage = errors.New("invalid activity message")

	// ErrDuplicateEvent is returned when an event id was already persisted
	ErrDuplicateEvent = errors.New("activity event already recorded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
