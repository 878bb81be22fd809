package query

import "errors"

var (
	// ErrUnknownTable marks a FROM/join reference to a table the source
	// doesn't know about.
	ErrUnknownTable = errors.New("query: unknown table")
	// ErrUnknownColumn marks a SELECT/WHERE/GROUP BY/ORDER BY reference
	// to a column absent from its operator's schema.
	ErrUnknownColumn = errors.New("query: unknown column")
	// ErrNoActiveQuery marks an Exec(nil, ...) call with no query
	// previously submitted (or the previous query already exhausted).
	ErrNoActiveQuery = errors.New("query: no active query to resume")
)
