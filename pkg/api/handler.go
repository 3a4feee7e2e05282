package api

import "context"

// State is the open, caller-defined key/value structure threaded by value
// through a run. The engine owns it for the duration of one run; handlers
// must not retain a reference past their own invocation.
type State = map[string]any

// ReservedStatePrefix marks engine bookkeeping keys inside State. Keys with
// this prefix are stripped before state is persisted to an external store.
const ReservedStatePrefix = "_sigflow."

// StripReserved returns a copy of state without engine bookkeeping keys.
// A nil state is returned as nil.
func StripReserved(state State) State {
	if state == nil {
		return nil
	}
	out := make(State, len(state))
	for k, v := range state {
		if len(k) >= len(ReservedStatePrefix) && k[:len(ReservedStatePrefix)] == ReservedStatePrefix {
			continue
		}
		out[k] = v
	}
	return out
}

// HandlerFunc transforms a signal and a state into a tagged Result.
//
// Handlers run strictly in chain order, never concurrently within one run.
// The context is cancelled when the run's deadline elapses; handlers that may
// block for a long time should poll it, because the supervisor cannot preempt
// a handler body mid-flight (it only stops waiting for it).
type HandlerFunc func(ctx context.Context, sig Signal, state State) Result

// Handler pairs a handler function with a stable name. The name is the
// handler's identity in execution statistics, so it should be unique within
// a chain; the builder assigns positional names when none is given.
type Handler struct {
	Name string
	Fn   HandlerFunc
}

// Chain is an ordered list of handlers executed as one pipeline.
type Chain struct {
	Name     string
	Handlers []Handler
}
