// This file converts panics raised inside caller-supplied functions (loss and
// gradient functors, optimizer hooks) into structured errors.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned when a caller-supplied function panics.
type PanicError struct {
	// PanicValue is the value passed to panic().
	PanicValue interface{}

	// StackTrace is captured at recovery time.
	StackTrace string

	// Operation names the call site that recovered, e.g. "StochasticGradient.OnExample".
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a PanicError for the given operation.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover must be deferred directly. It stores a PanicError in *err when the
// surrounding function panics; an error already in *err is kept as the cause.
//
//	func (s *StochasticGradient) Iterate(numberEpochs int) (params *mat.VecDense, err error) {
//	    const op = "StochasticGradient.Iterate"
//	    defer errors.Recover(&err, op)
//	    ...
//	}
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)", operation, r, *err)
			return
		}
		*err = NewPanicError(operation, r)
	}
}

// SafeExecute runs fn and converts a panic into a PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
