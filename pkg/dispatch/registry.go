package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/petrijr/sigflow/pkg/api"
)

// ChainRegistry holds named chains so tasks can reference them by name.
// Chains carry function values and are never serialized; only their names
// travel through a queue.
type ChainRegistry struct {
	mu     sync.RWMutex
	byName map[string]api.Chain
}

// NewChainRegistry creates an empty registry.
func NewChainRegistry() *ChainRegistry {
	return &ChainRegistry{
		byName: make(map[string]api.Chain),
	}
}

// Register stores a chain under its name.
func (r *ChainRegistry) Register(chain api.Chain) error {
	if chain.Name == "" {
		return fmt.Errorf("chain name is required")
	}
	if len(chain.Handlers) == 0 {
		return fmt.Errorf("chain %q must have at least one handler", chain.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[chain.Name]; exists {
		return fmt.Errorf("chain %q already registered", chain.Name)
	}
	r.byName[chain.Name] = chain
	return nil
}

// Get returns the chain registered under name.
func (r *ChainRegistry) Get(name string) (api.Chain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, ok := r.byName[name]
	if !ok {
		return api.Chain{}, fmt.Errorf("chain %q not found", name)
	}
	return chain, nil
}

// Names returns all registered chain names, sorted.
func (r *ChainRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
