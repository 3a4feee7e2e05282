// Package sigflow provides a lightweight, embeddable signal-driven pipeline
// engine for Go.
//
// Sigflow runs an ordered chain of handler functions over an immutable
// signal and a mutable state value. Each handler declares what should happen
// next by returning one tagged result from a closed protocol; the engine
// interprets that result, forwards a signal under a configurable strategy,
// and enforces step-count and wall-clock ceilings. It runs fully in Go and
// integrates cleanly into existing codebases.
//
// # Core Concepts
//
// The sigflow programming model is intentionally small:
//
//  1. Signal
//  2. Handler and the result protocol
//  3. Chain / ChainBuilder
//  4. Runner
//  5. LocalRunner
//
// # Signal
//
// A Signal is an immutable envelope carrying a type tag and a payload plus
// metadata with a generated trace ID. Signals are never mutated; deriving a
// signal from a parent links the two through a correlation ID.
//
// # Handler and the result protocol
//
// A handler is the fundamental executable unit:
//
//	func(ctx context.Context, sig sigflow.Signal, state sigflow.State) sigflow.Result
//
// It returns exactly one tagged result: Emit, EmitMany, Skip, Halt,
// HaltWith, Fail, Branch or Wait. The engine maps each tag to a control
// decision: continue, stop with a value, stop with an error, swap the
// state, or park the run. Anything outside the protocol aborts the run as a
// protocol violation.
//
// What signal the next handler sees after an Emit is the run's strategy:
// Forward passes it unchanged, Transform pipes it through a configured
// function, and Restart re-enters the chain from the first handler, turning
// the chain into a loop body bounded only by the configured limits.
//
// # Chain / ChainBuilder
//
// ChainBuilder provides the declarative API used to define chains:
//
//	chain := sigflow.New("text-pipeline").
//	    Transform("upcase", upcase).
//	    If("route", longEnough,
//	        []sigflow.Handler{sigflow.ToolHandler(reg, "notify")},
//	        []sigflow.Handler{sigflow.ToolHandler(reg, "log")},
//	    ).
//	    Build()
//
// Chains can also be loaded from YAML with LoadChain; conditions in
// configuration use a small, closed expression language rather than code.
//
// # Runner
//
// The Runner is the public run façade. It wires the execution engine, the
// deadline supervisor and the statistics collector together and returns a
// normalized Execution record: status, result value, final state, typed
// error, and (when requested) per-run statistics. State can be round-tripped
// through a pluggable StateStore (in-memory, SQLite, Redis) between
// independent runs.
//
// The timeout is a cooperative, "stop waiting" guarantee: the supervisor
// cancels the run context and returns the timeout outcome with the pristine
// pre-run state, but it cannot preempt a handler body that ignores its
// context. Handlers that may run long should poll ctx.
//
// # LocalRunner
//
// LocalRunner bundles a Runner, an in-memory queue, a chain registry and a
// Dispatcher into a single process-local helper for development and tests.
// NewSQLiteBundle provides the same wiring with a durable queue. Neither
// persists in-flight execution: a run that dies with the process is gone.
//
// For examples, see the /examples directory or the project README.
package sigflow
