package sigflow

import (
	"github.com/petrijr/sigflow/pkg/api"
	"github.com/petrijr/sigflow/pkg/tools"
)

// Built-in handler constructors, re-exported from pkg/api and pkg/tools.

// NamedHandler pairs a handler function with a name.
func NamedHandler(name string, fn HandlerFunc) Handler {
	return api.NamedHandler(name, fn)
}

// TransformHandler emits f applied to the incoming signal.
func TransformHandler(name string, f func(Signal) Signal) Handler {
	return api.TransformHandler(name, f)
}

// MapDataHandler derives a new signal whose payload is f applied to the
// incoming payload.
func MapDataHandler(name string, f func(any) (any, error)) Handler {
	return api.MapDataHandler(name, f)
}

// IfHandler routes the signal through one of two sub-chains based on cond.
func IfHandler(name string, cond func(Signal, State) bool, thenChain, elseChain []Handler) Handler {
	return api.IfHandler(name, cond, thenChain, elseChain)
}

// HaltHandler always halts the run with value.
func HaltHandler(name string, value any) Handler {
	return api.HaltHandler(name, value)
}

// WaitHandler always parks the run with a waiting outcome.
func WaitHandler(name, reason string) Handler {
	return api.WaitHandler(name, reason)
}

// SkipHandler always skips.
func SkipHandler(name string) Handler {
	return api.SkipHandler(name)
}

// ToolHandler invokes a registered tool on the signal payload, wrapping the
// outcome as a "tool_result" or "error" signal.
func ToolHandler(reg *tools.Registry, name string) Handler {
	return tools.Handler(reg, name)
}
