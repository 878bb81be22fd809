package loader

import "errors"

var (
	// ErrMalformed marks a schema or data file row that doesn't parse,
	// per spec.md §7's "validation failure" error kind.
	ErrMalformed = errors.New("loader: malformed input")
	// ErrDataFile marks an I/O or validation failure while reading a
	// table's data file.
	ErrDataFile = errors.New("loader: data file error")
)
