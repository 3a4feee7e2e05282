// Package config loads declarative pipeline descriptions (YAML) and turns
// them into handler chains understood by the engine. It is a thin external
// collaborator: it only constructs handlers, it performs no execution.
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/petrijr/sigflow/pkg/api"
	"github.com/petrijr/sigflow/pkg/tools"
)

// chainDoc is the top-level YAML document shape.
type chainDoc struct {
	Name     string           `yaml:"name"`
	Handlers []map[string]any `yaml:"handlers"`
}

// Handler spec shapes, decoded with mapstructure from the per-kind YAML maps.

type transformSpec struct {
	Expr string `mapstructure:"expr"`
	Type string `mapstructure:"type"`
}

type branchSpec struct {
	When string           `mapstructure:"when"`
	Then []map[string]any `mapstructure:"then"`
	Else []map[string]any `mapstructure:"else"`
}

type emitSpec struct {
	Type string `mapstructure:"type"`
	Data any    `mapstructure:"data"`
}

type haltSpec struct {
	Value any `mapstructure:"value"`
}

type waitSpec struct {
	Reason string `mapstructure:"reason"`
}

// Loader builds chains from YAML documents, resolving tool references
// against a registry and compiling expressions with a shared evaluator.
type Loader struct {
	registry *tools.Registry
	eval     *Evaluator
}

// NewLoader creates a Loader. registry may be nil if the configuration uses
// no tool steps.
func NewLoader(registry *tools.Registry) *Loader {
	return &Loader{
		registry: registry,
		eval:     NewEvaluator(),
	}
}

// LoadFile reads and loads a YAML chain definition from a file.
func (l *Loader) LoadFile(path string) (api.Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.Chain{}, err
	}
	return l.Load(data)
}

// Load parses a YAML chain definition.
func (l *Loader) Load(data []byte) (api.Chain, error) {
	var doc chainDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return api.Chain{}, fmt.Errorf("parse chain config: %w", err)
	}
	if doc.Name == "" {
		return api.Chain{}, fmt.Errorf("chain config: name is required")
	}
	if len(doc.Handlers) == 0 {
		return api.Chain{}, fmt.Errorf("chain config %q: at least one handler is required", doc.Name)
	}

	handlers, err := l.buildHandlers(doc.Handlers)
	if err != nil {
		return api.Chain{}, fmt.Errorf("chain config %q: %w", doc.Name, err)
	}

	return api.Chain{Name: doc.Name, Handlers: handlers}, nil
}

func (l *Loader) buildHandlers(specs []map[string]any) ([]api.Handler, error) {
	handlers := make([]api.Handler, 0, len(specs))
	for i, spec := range specs {
		h, err := l.buildHandler(i, spec)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

func (l *Loader) buildHandler(index int, spec map[string]any) (api.Handler, error) {
	if len(spec) != 1 {
		return api.Handler{}, fmt.Errorf("handler %d: want exactly one kind per entry, got %d", index, len(spec))
	}

	for kind, raw := range spec {
		switch kind {
		case "tool", "notify":
			// Notification channels register themselves as tools (see
			// notify.Tool), so notify is resolved the same way.
			name, ok := raw.(string)
			if !ok {
				return api.Handler{}, fmt.Errorf("handler %d: %s wants a string name, got %T", index, kind, raw)
			}
			if l.registry == nil {
				return api.Handler{}, fmt.Errorf("handler %d: %s %q used without a registry", index, kind, name)
			}
			return tools.Handler(l.registry, name), nil

		case "transform":
			var ts transformSpec
			if err := decodeSpec(raw, &ts); err != nil {
				return api.Handler{}, fmt.Errorf("handler %d: transform: %w", index, err)
			}
			if ts.Expr == "" {
				return api.Handler{}, fmt.Errorf("handler %d: transform: expr is required", index)
			}
			if _, err := l.eval.compile(ts.Expr); err != nil {
				return api.Handler{}, fmt.Errorf("handler %d: transform: %w", index, err)
			}
			return l.transformHandler(index, ts), nil

		case "branch":
			var bs branchSpec
			if err := decodeSpec(raw, &bs); err != nil {
				return api.Handler{}, fmt.Errorf("handler %d: branch: %w", index, err)
			}
			if bs.When == "" {
				return api.Handler{}, fmt.Errorf("handler %d: branch: when is required", index)
			}
			return l.branchHandler(index, bs)

		case "emit":
			var es emitSpec
			if err := decodeSpec(raw, &es); err != nil {
				return api.Handler{}, fmt.Errorf("handler %d: emit: %w", index, err)
			}
			if es.Type == "" {
				return api.Handler{}, fmt.Errorf("handler %d: emit: type is required", index)
			}
			name := fmt.Sprintf("emit[%d]", index)
			return api.NamedHandler(name, func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				return api.Emit(api.Derive(sig, es.Type, es.Data), state)
			}), nil

		case "halt":
			var hs haltSpec
			if err := decodeSpec(raw, &hs); err != nil {
				return api.Handler{}, fmt.Errorf("handler %d: halt: %w", index, err)
			}
			return api.HaltHandler(fmt.Sprintf("halt[%d]", index), hs.Value), nil

		case "wait":
			var ws waitSpec
			if err := decodeSpec(raw, &ws); err != nil {
				return api.Handler{}, fmt.Errorf("handler %d: wait: %w", index, err)
			}
			return api.WaitHandler(fmt.Sprintf("wait[%d]", index), ws.Reason), nil

		case "skip":
			return api.SkipHandler(fmt.Sprintf("skip[%d]", index)), nil

		default:
			return api.Handler{}, fmt.Errorf("handler %d: unknown kind %q", index, kind)
		}
	}

	return api.Handler{}, fmt.Errorf("handler %d: empty entry", index)
}

func (l *Loader) transformHandler(index int, ts transformSpec) api.Handler {
	name := fmt.Sprintf("transform[%d]", index)
	return api.NamedHandler(name, func(ctx context.Context, sig api.Signal, state api.State) api.Result {
		data, err := l.eval.EvalValue(ts.Expr, sig, state)
		if err != nil {
			return api.Fail(err.Error(), state)
		}
		sigType := ts.Type
		if sigType == "" {
			sigType = sig.Type
		}
		return api.Emit(api.Derive(sig, sigType, data), state)
	})
}

func (l *Loader) branchHandler(index int, bs branchSpec) (api.Handler, error) {
	thenChain, err := l.buildHandlers(bs.Then)
	if err != nil {
		return api.Handler{}, fmt.Errorf("branch then: %w", err)
	}
	elseChain, err := l.buildHandlers(bs.Else)
	if err != nil {
		return api.Handler{}, fmt.Errorf("branch else: %w", err)
	}

	name := fmt.Sprintf("branch[%d]", index)
	cond := func(sig api.Signal, state api.State) bool {
		ok, err := l.eval.EvalBool(bs.When, sig, state)
		if err != nil {
			// A broken condition routes to the else chain; the config was
			// validated for syntax at load time via the program cache.
			return false
		}
		return ok
	}

	// Compile eagerly so syntax errors surface at load time, not mid-run.
	if _, err := l.eval.compile(bs.When); err != nil {
		return api.Handler{}, fmt.Errorf("branch when: %w", err)
	}

	return api.IfHandler(name, cond, thenChain, elseChain), nil
}

func decodeSpec(raw any, out any) error {
	return mapstructure.Decode(raw, out)
}
