package repository

import "errors"

var (
	// ErrNotFound indicates the target record does not exist in any state.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a concurrent modification prevented the update.
	ErrConflict = errors.New("record was modified concurrently")
)
