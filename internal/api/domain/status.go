package domain

import "strings"

// JobStatus is the internal lifecycle status of an email list
type JobStatus string

const (
	JobStatusUnprocessed JobStatus = "UNPROCESSED"
	JobStatusProcessing  JobStatus = "PROCESSING"
	JobStatusCompleted   JobStatus = "COMPLETED"
	JobStatusFailed      JobStatus = "FAILED"
)

// Provider status vocabulary
const (
	ProviderStatusPreparing = "preparing"
	ProviderStatusReady     = "ready"
	ProviderStatusVerifying = "verifying"
	ProviderStatusCompleted = "completed"
	ProviderStatusFailed    = "failed"
)

var providerStatusMap = map[string]JobStatus{
	ProviderStatusPreparing: JobStatusUnprocessed,
	ProviderStatusReady:     JobStatusProcessing,
	ProviderStatusVerifying: JobStatusProcessing,
	ProviderStatusCompleted: JobStatusCompleted,
	ProviderStatusFailed:    JobStatusFailed,
}

// MapProviderStatus translates a provider status into a JobStatus.
// Matching is case-insensitive; anything unrecognized maps to UNPROCESSED.
func MapProviderStatus(providerStatus string) JobStatus {
	if s, ok := providerStatusMap[strings.ToLower(strings.TrimSpace(providerStatus))]; ok {
		return s
	}
	return JobStatusUnprocessed
}

// IsTerminal reports whether no further transitions are allowed
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Valid reports whether s is one of the known statuses
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusUnprocessed, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

func (s JobStatus) rank() int {
	switch s {
	case JobStatusUnprocessed:
		return 0
	case JobStatusProcessing:
		return 1
	case JobStatusCompleted, JobStatusFailed:
		return 2
	}
	return -1
}

// CanTransition reports whether a job may move from s to next.
// Statuses only advance; terminal statuses never change.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.IsTerminal() || !next.Valid() {
		return false
	}
	return next.rank() > s.rank()
}
