package contract

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleVersion is returned when a versioned update lost a race.
	ErrStaleVersion = errors.New("record was modified concurrently")
)
