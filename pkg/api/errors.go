package api

import (
	"errors"
	"fmt"
	"time"
)

// HandlerError is a handler-declared failure: a handler returned Fail and
// the reason is propagated verbatim.
type HandlerError struct {
	Reason string
}

func (e *HandlerError) Error() string {
	return e.Reason
}

// ProcessingError wraps an unexpected fault (a panic) raised by a handler
// body and caught at the loop boundary.
type ProcessingError struct {
	Handler string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing error in handler %q: %v", e.Handler, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// ProtocolError reports a handler returning a value outside the closed
// result protocol (typically a nil Result).
type ProtocolError struct {
	Handler string
	Value   any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("handler %q violated the result protocol: got %T (%v)", e.Handler, e.Value, e.Value)
}

// StepLimitError reports that a run exceeded its configured step ceiling.
// The run's Execution still carries the state as of the last completed step.
type StepLimitError struct {
	Steps int
	Limit int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("step limit exceeded: %d steps performed, limit %d", e.Steps, e.Limit)
}

// TimeoutError reports that a run exceeded its wall-clock budget. The run's
// Execution carries the pristine pre-run state, because partial mutations
// from the aborted pass cannot be trusted.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("run timed out after %s", e.Limit)
}

// IsHandlerError reports whether err is a handler-declared failure and
// returns its reason.
func IsHandlerError(err error) (string, bool) {
	var he *HandlerError
	if errors.As(err, &he) {
		return he.Reason, true
	}
	return "", false
}

// IsTimeout reports whether err is a run timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsStepLimit reports whether err is a step-ceiling violation.
func IsStepLimit(err error) bool {
	var se *StepLimitError
	return errors.As(err, &se)
}
