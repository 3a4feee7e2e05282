package persistence

import (
	"context"
	"errors"

	"github.com/petrijr/sigflow/pkg/api"
)

// ErrNotFound is returned when no state is stored under (storeID, key).
var ErrNotFound = errors.New("state not found")

// StateStore persists run state between independent top-level runs. It is a
// thin key-value boundary: storeID namespaces keys so several applications
// can share one backend.
//
// Implementations must serialize concurrent Get/Update/Delete per key so
// that Update's read-modify-write composes atomically (single-writer-per-key
// discipline).
type StateStore interface {
	// Get returns the state stored under (storeID, key), or ErrNotFound.
	Get(ctx context.Context, storeID, key string) (api.State, error)

	// Put stores state under (storeID, key), replacing any previous value.
	Put(ctx context.Context, storeID, key string, state api.State) error

	// Update atomically applies f to the stored state. If nothing is stored
	// yet, f is applied to def instead.
	Update(ctx context.Context, storeID, key string, def api.State, f func(api.State) api.State) error

	// Delete removes the state under (storeID, key). Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, storeID, key string) error
}
