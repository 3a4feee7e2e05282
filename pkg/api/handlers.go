package api

import "context"

// NamedHandler pairs a handler function with a name.
func NamedHandler(name string, fn HandlerFunc) Handler {
	return Handler{Name: name, Fn: fn}
}

// TransformHandler returns a handler that emits f applied to the incoming
// signal, passing the state through unchanged.
func TransformHandler(name string, f func(Signal) Signal) Handler {
	return Handler{
		Name: name,
		Fn: func(ctx context.Context, sig Signal, state State) Result {
			return Emit(f(sig), state)
		},
	}
}

// MapDataHandler returns a handler that derives a new signal whose payload
// is f applied to the incoming payload. An error from f becomes a declared
// handler failure.
func MapDataHandler(name string, f func(any) (any, error)) Handler {
	return Handler{
		Name: name,
		Fn: func(ctx context.Context, sig Signal, state State) Result {
			out, err := f(sig.Data)
			if err != nil {
				return Fail(err.Error(), state)
			}
			return Emit(Derive(sig, sig.Type, out), state)
		},
	}
}

// HaltHandler returns a handler that always halts the run with value,
// keeping the state that was current when it ran.
func HaltHandler(name string, value any) Handler {
	return Handler{
		Name: name,
		Fn: func(ctx context.Context, sig Signal, state State) Result {
			return Halt(value)
		},
	}
}

// WaitHandler returns a handler that always parks the run with a waiting
// outcome and the given reason.
func WaitHandler(name, reason string) Handler {
	return Handler{
		Name: name,
		Fn: func(ctx context.Context, sig Signal, state State) Result {
			return Wait(reason, state)
		},
	}
}

// SkipHandler returns a handler that always skips.
func SkipHandler(name string) Handler {
	return Handler{
		Name: name,
		Fn: func(ctx context.Context, sig Signal, state State) Result {
			return Skip(state)
		},
	}
}

// IfHandler returns a handler that routes the signal through one of two
// sub-chains based on cond, inline within a single engine step.
//
// Sub-handlers are interpreted with the forward strategy: Emit and EmitMany
// advance the local signal, Branch swaps the local state, and any terminal
// result (Skip, Halt, Fail, Wait) is returned outward for the engine to
// interpret. When the sub-chain runs off its end the combinator emits the
// final (signal, state) pair.
func IfHandler(name string, cond func(Signal, State) bool, thenChain, elseChain []Handler) Handler {
	return Handler{
		Name: name,
		Fn: func(ctx context.Context, sig Signal, state State) Result {
			branch := elseChain
			if cond(sig, state) {
				branch = thenChain
			}
			return runInline(ctx, branch, sig, state)
		},
	}
}

// runInline folds a sub-chain inside one handler invocation.
func runInline(ctx context.Context, handlers []Handler, sig Signal, state State) Result {
	for _, h := range handlers {
		if h.Fn == nil {
			return nil
		}
		switch r := h.Fn(ctx, sig, state).(type) {
		case EmitResult:
			sig = r.Signal
			state = r.State
		case EmitManyResult:
			if n := len(r.Signals); n > 0 {
				sig = r.Signals[n-1]
			}
			state = r.State
		case BranchResult:
			if r.Cond {
				state = r.TrueState
			} else {
				state = r.FalseState
			}
		case SkipResult:
			return r
		case HaltResult:
			return r
		case FailResult:
			return r
		case WaitResult:
			return r
		default:
			return nil
		}
	}
	return Emit(sig, state)
}
