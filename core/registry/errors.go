package registry

import "errors"

// ErrInvariantViolation signals a broken ownership invariant, for example a
// job removed twice or replaced by a second owner. It is a programming
// error and is raised as a panic.
var ErrInvariantViolation = errors.New("registry invariant violation")
