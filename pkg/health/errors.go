package health

import "errors"

// ErrCheckTimeout is joined with a check's error when the shared deadline
// expired while it ran.
var ErrCheckTimeout = errors.New("health: check timeout")
