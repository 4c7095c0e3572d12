package once

import "errors"

var (
	// ErrHandlerPanic is the cause of a HandlerError produced by a panic.
	ErrHandlerPanic = errors.New("form handler panicked")
	// ErrNilOutcome is the cause of a HandlerError produced when a handler
	// returns neither an outcome nor an error.
	ErrNilOutcome = errors.New("form handler returned no outcome")
	// ErrTokenSource is the cause of a HandlerError produced when the form
	// token could not be read.
	ErrTokenSource = errors.New("form token unavailable")
)
