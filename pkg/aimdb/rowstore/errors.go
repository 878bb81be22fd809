package rowstore

import "errors"

var (
	// ErrInvalidColumn marks an out-of-range column rank.
	ErrInvalidColumn = errors.New("rowstore: invalid column rank")
	// ErrInvalidOrdinal marks an out-of-range row ordinal.
	ErrInvalidOrdinal = errors.New("rowstore: invalid row ordinal")
	// ErrTombstoned marks an access to a deleted row.
	ErrTombstoned = errors.New("rowstore: row is tombstoned")
	// ErrCapacity marks a directory or arena growth failure.
	ErrCapacity = errors.New("rowstore: capacity exhausted")
)
