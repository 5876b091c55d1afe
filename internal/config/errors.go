package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrMissingBaseURL is returned when the API or web base URL is empty.
	ErrMissingBaseURL = errors.New("invalid base url: api and web base urls are required")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidSessionTTL is returned when the session TTL is not positive.
	ErrInvalidSessionTTL = errors.New("invalid session ttl: must be positive")

	// ErrInvalidDelay is returned when a pacing delay is negative.
	// Use 0 to disable pacing.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMinMarkupSize is returned when the markup size floor is negative.
	ErrInvalidMinMarkupSize = errors.New("invalid min markup size: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidConcurrency is returned when the resolve concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
