package hashindex

import "errors"

// ErrInvalid marks a malformed index configuration (e.g. no key columns).
var ErrInvalid = errors.New("hashindex: invalid configuration")
