package once

import (
	"fmt"
	"net/http"
)

// Outcome is the result of a form action. It is one of Success,
// ValidationFailure, RedirectSignal or *HandlerError.
type Outcome interface {
	// Kind names the outcome variant for logs and metrics.
	Kind() string
	outcome()
}

// Message is the conventional payload for failures.
type Message struct {
	Message string `json:"message"`
}

// Success carries the payload of a successful action.
type Success struct {
	Payload any
}

// ValidationFailure is a structured failure returned by the handler.
type ValidationFailure struct {
	Status  int
	Payload any
}

// RedirectSignal asks the caller to redirect to Location.
type RedirectSignal struct {
	Location string
	Status   int
}

// HandlerError wraps an error returned or panic raised by the handler.
type HandlerError struct {
	Cause error
}

func (Success) Kind() string           { return "success" }
func (ValidationFailure) Kind() string { return "validation_failure" }
func (RedirectSignal) Kind() string    { return "redirect" }
func (*HandlerError) Kind() string     { return "handler_error" }

func (Success) outcome()           {}
func (ValidationFailure) outcome() {}
func (RedirectSignal) outcome()    {}
func (*HandlerError) outcome()     {}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("form handler failed: %v", e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

// TokenMissing is returned for requests that carry no form token.
var TokenMissing Outcome = ValidationFailure{
	Status:  http.StatusBadRequest,
	Payload: Message{Message: "Form token missing"},
}

// Redirect returns a RedirectSignal to location with status 303 See Other.
func Redirect(location string) RedirectSignal {
	return RedirectSignal{Location: location, Status: http.StatusSeeOther}
}

// Fail returns a ValidationFailure with a Message payload.
func Fail(status int, message string) ValidationFailure {
	return ValidationFailure{Status: status, Payload: Message{Message: message}}
}

var (
	_ Outcome = Success{}
	_ Outcome = ValidationFailure{}
	_ Outcome = RedirectSignal{}
	_ Outcome = (*HandlerError)(nil)
	_ error   = (*HandlerError)(nil)
)
