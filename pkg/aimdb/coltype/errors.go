package coltype

import "errors"

var (
	// ErrOutOfRange marks a text literal that does not fit its declared type.
	ErrOutOfRange = errors.New("coltype: value out of range")
	// ErrUnsupported marks an operation invoked on a type that does not
	// implement it.
	ErrUnsupported = errors.New("coltype: unsupported operation")
)
