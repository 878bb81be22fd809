package arena

import "errors"

var (
	// ErrInvalid marks a request with a malformed size or capacity.
	ErrInvalid = errors.New("arena: invalid request")
	// ErrCapacity marks a bump allocation that would exceed the backing region.
	ErrCapacity = errors.New("arena: capacity exhausted")
)
