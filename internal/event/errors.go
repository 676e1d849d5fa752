package event

import (
	"errors"
	"fmt"
)

// ErrInvalidEventName is wrapped by the *ArgumentError returned when a trigger
// names no event.
var ErrInvalidEventName = errors.New("event name must be a non-empty string")

// ArgumentError reports a rejected argument.
type ArgumentError struct {
	Op    string
	Value any
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %v (got %T %#v)", e.Op, e.Err, e.Value, e.Value)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// HandlerError wraps the error returned by a listener during dispatch.
type HandlerError struct {
	Event      string
	ListenerID string
	Err        error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("event %q: listener %s: %v", e.Event, e.ListenerID, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
