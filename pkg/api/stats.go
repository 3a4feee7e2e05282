package api

import "time"

// ExecutionStats accumulates per-run counters, one update per handler
// invocation. It is created at run start, mutated once per step, and sealed
// exactly once when the run produces its outcome.
type ExecutionStats struct {
	// StartTime is when the run began.
	StartTime time.Time

	// Steps is the number of handler invocations actually performed,
	// including the one that trips a limit violation.
	Steps uint64

	// SignalTypes counts, per signal type, how often a handler observed a
	// signal of that type (keyed by the pre-invocation signal's type).
	SignalTypes map[string]uint64

	// HandlerCalls counts invocations per handler name.
	HandlerCalls map[string]uint64

	// MaxStateSize is the largest state entry count observed across the
	// run. It is monotone: it never decreases even if the state shrinks.
	MaxStateSize int

	// Complete is set once by finalization.
	Complete bool

	// Elapsed is the run's wall-clock duration, stamped at finalization.
	Elapsed time.Duration

	// Outcome is the final run status, stamped at finalization.
	Outcome Status

	// Reason holds the error reason for failed runs, or the wait reason for
	// waiting runs.
	Reason string
}

// NewExecutionStats returns stats ready to accumulate, with StartTime set.
func NewExecutionStats() *ExecutionStats {
	return &ExecutionStats{
		StartTime:    time.Now(),
		SignalTypes:  make(map[string]uint64),
		HandlerCalls: make(map[string]uint64),
	}
}

// Clone returns a deep copy, so callers can hold a snapshot without racing
// a finalizer.
func (s *ExecutionStats) Clone() *ExecutionStats {
	if s == nil {
		return nil
	}
	out := *s
	out.SignalTypes = make(map[string]uint64, len(s.SignalTypes))
	for k, v := range s.SignalTypes {
		out.SignalTypes[k] = v
	}
	out.HandlerCalls = make(map[string]uint64, len(s.HandlerCalls))
	for k, v := range s.HandlerCalls {
		out.HandlerCalls[k] = v
	}
	return &out
}
