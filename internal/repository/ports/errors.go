package ports

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional update lost to a concurrent write.
	ErrConflict = errors.New("record modified concurrently")
	// ErrCodeTaken is returned when a reset code is already present in the store.
	ErrCodeTaken = errors.New("reset code already in use")
)
