// Package api defines the public types of the sigflow pipeline engine:
// signals, the closed result protocol, handlers and chains, execution
// limits, statistics, and the Observer interface.
//
// Most applications import the root sigflow package, which re-exports
// everything here; this package exists so that internal packages and
// external store or tool implementations can share the same types without
// importing the engine itself.
//
// # Result protocol
//
// A handler returns exactly one tagged Result per invocation:
//
//	Emit(sig, state)        continue with a new signal
//	EmitMany(sigs, state)   continue; the last signal is forwarded
//	Skip(state)             stop with a nil result (or continue, see Limits)
//	Halt(value)             stop successfully, keeping the pre-handler state
//	HaltWith(value, state)  stop successfully with an explicit state
//	Fail(reason, state)     stop with a declared error
//	Branch(cond, a, b)      keep the signal, swap the state
//	Wait(reason, state)     stop with a waiting outcome; retry is the
//	                        caller's business
//
// Anything else, including a nil Result, is a protocol violation and aborts
// the run.
package api
