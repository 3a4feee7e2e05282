// Package tools provides a named function registry and the glue that turns a
// registered tool into a pipeline handler. The wrapping logic lives here, on
// purpose, outside the engine core.
package tools

import (
	"fmt"
	"sort"
	"sync"
)

// Fn is a registered tool function. It receives the signal payload and
// returns a result payload.
type Fn func(input any) (any, error)

// NotFoundError is returned by Get for an unregistered tool name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not registered: %s", e.Name)
}

// Registry is a goroutine-safe name → function lookup table.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Fn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Fn),
	}
}

// Register stores fn under name, replacing any previous registration.
func (r *Registry) Register(name string, fn Fn) error {
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("tool %q has nil function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
// Useful for initialization in main().
func (r *Registry) MustRegister(name string, fn Fn) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Fn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.tools[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return fn, nil
}

// List returns all registered tool names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
