package hashtable

import "errors"

// ErrCapacity marks an arena exhaustion while growing a bucket's pair array.
var ErrCapacity = errors.New("hashtable: capacity exhausted")
