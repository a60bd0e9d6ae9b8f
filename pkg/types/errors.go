package types

import "errors"

// Errors shared across packages
var (
	ErrEmptyQuery       = errors.New("query cannot be empty")
	ErrInvalidScore     = errors.New("score must be between 0 and 1")
	ErrNotFound         = errors.New("material not found")
	ErrDimensionError   = errors.New("embedding dimension mismatch")
	ErrStoreUnavailable = errors.New("backing store unavailable")
)
