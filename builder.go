package sigflow

import (
	"fmt"

	"github.com/petrijr/sigflow/pkg/api"
)

// ChainBuilder provides a fluent API for defining handler chains:
//
//	chain := sigflow.New("text-pipeline").
//	    Handle("upcase", upcase).
//	    Handle("route", route).
//	    Build()
//
//	ex, err := sigflow.Run(ctx, chain, sig, nil, sigflow.Limits{})
type ChainBuilder struct {
	chain api.Chain
}

// New creates a new chain builder with the given name.
func New(name string) *ChainBuilder {
	return &ChainBuilder{
		chain: api.Chain{
			Name:     name,
			Handlers: make([]api.Handler, 0),
		},
	}
}

// Name returns the chain name.
func (b *ChainBuilder) Name() string {
	return b.chain.Name
}

// Handle appends a named handler function to the chain.
func (b *ChainBuilder) Handle(name string, fn HandlerFunc) *ChainBuilder {
	if fn == nil {
		panic(fmt.Sprintf("sigflow: handler %q has nil function", name))
	}
	if name == "" {
		// Positional identity keeps stats keys stable without hashing
		// function values.
		name = fmt.Sprintf("handler[%d]", len(b.chain.Handlers))
	}
	b.chain.Handlers = append(b.chain.Handlers, api.Handler{Name: name, Fn: fn})
	return b
}

// Append adds a prebuilt handler (for example a tool handler or a
// combinator) to the chain.
func (b *ChainBuilder) Append(h Handler) *ChainBuilder {
	if h.Fn == nil {
		panic(fmt.Sprintf("sigflow: handler %q has nil function", h.Name))
	}
	if h.Name == "" {
		h.Name = fmt.Sprintf("handler[%d]", len(b.chain.Handlers))
	}
	b.chain.Handlers = append(b.chain.Handlers, h)
	return b
}

// If adds a conditional routing handler composed of then/else sub-chains.
func (b *ChainBuilder) If(name string, cond func(Signal, State) bool, thenChain, elseChain []Handler) *ChainBuilder {
	return b.Append(api.IfHandler(name, cond, thenChain, elseChain))
}

// Transform adds a handler that rewrites the signal with f.
func (b *ChainBuilder) Transform(name string, f func(Signal) Signal) *ChainBuilder {
	return b.Append(api.TransformHandler(name, f))
}

// Build returns the finished chain.
func (b *ChainBuilder) Build() Chain {
	return b.chain
}
