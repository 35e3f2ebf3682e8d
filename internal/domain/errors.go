package domain

import "errors"

var (
	// ErrSessionNotActive is returned when an operation needs a live session.
	ErrSessionNotActive = errors.New("no active session")
	// ErrInvalidConfiguration is returned for a bad personality or technique pool.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrGeneratorUnavailable marks a failed external text generation.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
	// ErrPersistenceFailure marks a failed storage read or write.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrInvalidInput is returned for malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExportDisabled is returned when privacy settings forbid exports.
	ErrExportDisabled = errors.New("export disabled by privacy settings")
)
