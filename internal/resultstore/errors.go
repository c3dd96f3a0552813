package resultstore

import "errors"

// ErrNotFound is returned when no result exists for the requested
// business and module.
var ErrNotFound = errors.New("result not found")
