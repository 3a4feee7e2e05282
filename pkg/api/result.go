package api

// Result is the closed set of tagged outcomes a handler may return. The
// engine interprets exactly one Result per handler invocation; a nil Result
// (or anything outside this set) is a protocol violation and aborts the run.
//
// The interface is sealed: only the variants defined in this package satisfy
// it. Construct values with the helper functions (Emit, EmitMany, Skip, Halt,
// HaltWith, Fail, Branch, Wait) rather than with struct literals.
type Result interface {
	isResult()
}

// EmitResult continues the run with a new signal. What the next handler
// actually receives depends on the configured signal strategy.
type EmitResult struct {
	Signal Signal
	State  State
}

// EmitManyResult continues the run after emitting several signals. Only the
// last signal is forwarded to the next handler; earlier ones are observable
// through the Observer but are not fanned out.
type EmitManyResult struct {
	Signals []Signal
	State   State
}

// SkipResult stops the run with a nil result, or, when the run is configured
// with ContinueOnSkip, moves on to the next handler with the pre-skip signal.
type SkipResult struct {
	State State
}

// HaltResult stops the run successfully with Value as the run result.
//
// When paired is false the engine discards State and keeps the state that was
// current before the halting handler ran.
type HaltResult struct {
	Value  Value
	State  State
	paired bool
}

// Value is the result payload carried by a halt.
type Value = any

// FailResult stops the run with a handler-declared error reason.
type FailResult struct {
	Reason string
	State  State
}

// BranchResult continues to the next handler with the same signal but with
// the state replaced by TrueState or FalseState depending on Cond.
type BranchResult struct {
	Cond       bool
	TrueState  State
	FalseState State
}

// WaitResult is a terminal, non-blocking observation: the engine returns a
// waiting outcome immediately and leaves any retry policy to the caller.
type WaitResult struct {
	Reason string
	State  State
}

func (EmitResult) isResult()     {}
func (EmitManyResult) isResult() {}
func (SkipResult) isResult()     {}
func (HaltResult) isResult()     {}
func (FailResult) isResult()     {}
func (BranchResult) isResult()   {}
func (WaitResult) isResult()     {}

// Emit returns a result that forwards sig with the given state.
func Emit(sig Signal, state State) Result {
	return EmitResult{Signal: sig, State: state}
}

// EmitMany returns a result carrying several signals; the last one is
// forwarded.
func EmitMany(sigs []Signal, state State) Result {
	return EmitManyResult{Signals: sigs, State: state}
}

// Skip returns a skip result with the given state.
func Skip(state State) Result {
	return SkipResult{State: state}
}

// Halt stops the run with value, keeping the state that was current before
// the halting handler ran.
func Halt(value Value) Result {
	return HaltResult{Value: value}
}

// HaltWith stops the run with value and an explicitly paired state, which the
// engine honors instead of the pre-handler state.
func HaltWith(value Value, state State) Result {
	return HaltResult{Value: value, State: state, paired: true}
}

// Paired reports whether the halt carries an explicit state.
func (r HaltResult) Paired() bool { return r.paired }

// Fail stops the run with a handler-declared error.
func Fail(reason string, state State) Result {
	return FailResult{Reason: reason, State: state}
}

// Branch keeps the current signal and swaps the state based on cond.
func Branch(cond bool, trueState, falseState State) Result {
	return BranchResult{Cond: cond, TrueState: trueState, FalseState: falseState}
}

// Wait returns a waiting result with the given reason.
func Wait(reason string, state State) Result {
	return WaitResult{Reason: reason, State: state}
}
