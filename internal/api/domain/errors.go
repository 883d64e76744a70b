package domain

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrProviderUnavailable = errors.New("verification provider unavailable")
	ErrStatusUnavailable   = errors.New("provider returned no status")
	// ErrStatusConflict means the job no longer has the status the write expected
	ErrStatusConflict = errors.New("job status changed concurrently")
	ErrDuplicateJob   = errors.New("job already exists")
)
