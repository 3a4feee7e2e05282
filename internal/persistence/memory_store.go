package persistence

import (
	"context"
	"sync"

	"github.com/petrijr/sigflow/pkg/api"
)

// MemoryStore is a goroutine-safe StateStore backed by maps. States are
// cloned through the codec on the way in and out, so callers never share a
// map with the store.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]api.State
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]api.State),
	}
}

var _ StateStore = (*MemoryStore)(nil)

func memKey(storeID, key string) string {
	return storeID + "\x00" + key
}

func (s *MemoryStore) Get(ctx context.Context, storeID, key string) (api.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[memKey(storeID, key)]
	if !ok {
		return nil, ErrNotFound
	}
	return CloneState(state)
}

func (s *MemoryStore) Put(ctx context.Context, storeID, key string, state api.State) error {
	clone, err := CloneState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[memKey(storeID, key)] = clone
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, storeID, key string, def api.State, f func(api.State) api.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[memKey(storeID, key)]
	if !ok {
		current = def
	}
	// Hand f a private copy; the mutex makes the whole read-modify-write
	// atomic with respect to other store calls.
	clone, err := CloneState(current)
	if err != nil {
		return err
	}
	next, err := CloneState(f(clone))
	if err != nil {
		return err
	}
	s.states[memKey(storeID, key)] = next
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, storeID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, memKey(storeID, key))
	return nil
}
