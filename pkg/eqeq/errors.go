package eqeq

import (
	"errors"
	"fmt"
)

var (
	// ErrInvocation is matched by every failure of the engine itself.
	ErrInvocation = errors.New("eqeq: invocation failed")
	// ErrDecode is matched when a list result is not a JSON array of numbers.
	ErrDecode = errors.New("eqeq: cannot decode result")
)

// InvocationError wraps an engine failure. Diagnostics holds what the engine
// wrote on its diagnostic streams when they were captured (Verbose false).
type InvocationError struct {
	Err         error
	Diagnostics string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("eqeq: invocation failed: %v", e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }

// DecodeError is returned when the result requested as a list cannot be
// decoded. Raw is the text returned by the engine.
type DecodeError struct {
	Err error
	Raw string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("eqeq: cannot decode result: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
