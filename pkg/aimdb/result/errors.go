package result

import "errors"

// ErrCapacity marks an arena exhaustion while allocating a result buffer.
var ErrCapacity = errors.New("result: capacity exhausted")
