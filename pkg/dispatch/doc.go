// Package dispatch provides asynchronous execution of handler chains: a
// ChainRegistry that names chains, and a Dispatcher that consumes run tasks
// from a queue and executes them on a Runner.
//
// Tasks are requests, not in-flight executions. A durable queue (see
// sigflow.NewSQLiteBundle) survives process restarts, but a run that was in
// progress when the process died is simply gone; the engine makes no
// durability promise about in-flight work, and the dispatcher inherits that.
//
// Results of asynchronous runs surface through the Observer configured on
// the Runner, or through state persisted via the Runner's state store
// binding.
package dispatch
