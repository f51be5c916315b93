package engine

import "errors"

var (
	// ErrValidation marks requests with missing or malformed fields. The
	// operation is not attempted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing template, an empty entity population or
	// an entity the provider cannot resolve. Nothing is written.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a provider failure other than a missing entity.
	ErrUpstream = errors.New("upstream data error")
)
