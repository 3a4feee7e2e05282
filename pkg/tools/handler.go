package tools

import (
	"context"
	"fmt"

	"github.com/petrijr/sigflow/pkg/api"
)

// Signal types produced by tool handlers.
const (
	SignalToolResult = "tool_result"
	SignalError      = "error"
)

// Handler builds a pipeline handler that invokes the named tool on the
// signal payload.
//
// On success it emits a SignalToolResult signal derived from the input
// signal, carrying the tool's output. A missing tool, a tool error, or a
// tool panic emits a SignalError signal instead; either way the handler
// stays inside the result protocol and never aborts the run by itself.
func Handler(reg *Registry, name string) api.Handler {
	return api.Handler{
		Name: "tool:" + name,
		Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
			fn, err := reg.Get(name)
			if err != nil {
				return api.Emit(errorSignal(sig, name, err), state)
			}

			out, err := call(fn, sig.Data)
			if err != nil {
				return api.Emit(errorSignal(sig, name, err), state)
			}

			result := api.Derive(sig, SignalToolResult, out)
			result.Meta.Source = name
			return api.Emit(result, state)
		},
	}
}

// call invokes the tool, converting a panic into an error.
func call(fn Fn, input any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("tool panic: %v", p)
		}
	}()
	return fn(input)
}

func errorSignal(parent api.Signal, tool string, err error) api.Signal {
	s := api.Derive(parent, SignalError, err.Error())
	s.Meta.Source = tool
	return s
}
