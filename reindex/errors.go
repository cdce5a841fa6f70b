package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when the attempt count is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrInvalidConfig is returned when a Config field is out of range.
	ErrInvalidConfig = errors.New("invalid reindex config")

	// ErrRepositoryRequired is returned when no message repository is given.
	ErrRepositoryRequired = errors.New("message repository is required")

	// ErrIndexerRequired is returned when no indexer is given.
	ErrIndexerRequired = errors.New("indexer is required")
)
