package shared

import "errors"

var (
	// ErrNotFound indicates resource not found or disabled.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed or inconsistent input.
	ErrValidation = errors.New("validation failed")
)
