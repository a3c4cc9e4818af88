package backburner

import (
	"errors"
	"fmt"
)

// Sentinel lifecycle errors, checked with [errors.Is].
var (
	// ErrEndWithoutBegin is returned by [Backburner.End] when no instance is current.
	ErrEndWithoutBegin = errors.New("backburner: end called without begin")

	// ErrUnknownEvent is returned by [Backburner.On] and [Backburner.Off] for an
	// event name other than "begin" or "end".
	ErrUnknownEvent = errors.New("backburner: unknown event name")

	// ErrMissingCallback is returned by [Backburner.On] and [Backburner.Off]
	// when no callback is given.
	ErrMissingCallback = errors.New("backburner: a callback is required")

	// ErrCallbackNotRegistered is returned by [Backburner.Off] when the given
	// callback is not currently subscribed to the event.
	ErrCallbackNotRegistered = errors.New("backburner: callback is not registered for event")

	// ErrPause is returned by a work item's [Callable] to request that the
	// enclosing flush yield to the host and resume on its next turn,
	// modeling a rendering barrier. It is never propagated to onError.
	ErrPause = errors.New("backburner: pause requested")
)

// TypeError mirrors JavaScript's TypeError: a value was not of the shape the
// call site required (e.g. a nil or non-function method, a method name the
// target does not have).
type TypeError struct {
	Cause   error
	Message string
}

func (e *TypeError) Error() string {
	if e.Message == "" {
		return "backburner: type error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TypeError) Unwrap() error {
	return e.Cause
}

// RangeError mirrors JavaScript's RangeError: a value was outside the range
// the call site required (e.g. a queue name that is not among the declared
// queues).
type RangeError struct {
	Cause   error
	Message string
}

func (e *RangeError) Error() string {
	if e.Message == "" {
		return "backburner: range error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *RangeError) Unwrap() error {
	return e.Cause
}

// newTypeError builds a [TypeError] with a formatted message, no cause.
func newTypeError(format string, args ...any) *TypeError {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

// newRangeError builds a [RangeError] with a formatted message, no cause.
func newRangeError(format string, args ...any) *RangeError {
	return &RangeError{Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an error with a message, preserving it as a cause visible
// to [errors.Is] and [errors.As].
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
