package domain

import "errors"

var (
	// ErrValidation marks malformed input detected at the API boundary.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups for accounts the system does not know about.
	ErrNotFound = errors.New("not found")
	// ErrProvider marks failures communicating with or reported by Azure.
	ErrProvider = errors.New("provider error")
)
