package config

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/petrijr/sigflow/pkg/api"
)

// Evaluator evaluates condition and transform expressions against a signal
// and a state. Expressions are a small, closed language (expr-lang) compiled
// once and evaluated against a restricted variable set; there is no dynamic
// code execution.
//
// The variables visible to an expression:
//
//	type   the signal's type tag
//	data   the signal's payload
//	meta   {source, trace_id, correlation_id, custom}
//	state  the current run state
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewEvaluator creates an Evaluator with an empty program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// EvalBool evaluates a condition expression. The result must be a boolean.
func (e *Evaluator) EvalBool(code string, sig api.Signal, state api.State) (bool, error) {
	out, err := e.eval(code, sig, state)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q must return a boolean, got %T (%v)", code, out, out)
	}
	return b, nil
}

// EvalValue evaluates a transform expression and returns its value.
func (e *Evaluator) EvalValue(code string, sig api.Signal, state api.State) (any, error) {
	return e.eval(code, sig, state)
}

func (e *Evaluator) eval(code string, sig api.Signal, state api.State) (any, error) {
	program, err := e.compile(code)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", code, err)
	}

	env := map[string]any{
		"type": sig.Type,
		"data": sig.Data,
		"meta": map[string]any{
			"source":         sig.Meta.Source,
			"trace_id":       sig.Meta.TraceID,
			"correlation_id": sig.Meta.CorrelationID,
			"custom":         sig.Meta.Custom,
		},
		"state": map[string]any(state),
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate expression %q: %w", code, err)
	}
	return out, nil
}

func (e *Evaluator) compile(code string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[code]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	// The builtin type() function would shadow the "type" variable;
	// without this, `type == "x"` fails to compile.
	prog, err := expr.Compile(code,
		expr.AllowUndefinedVariables(),
		expr.DisableBuiltin("type"),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[code] = prog
	e.mu.Unlock()

	return prog, nil
}
