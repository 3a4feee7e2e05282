package sigflow

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestBundle(t *testing.T, limits Limits) *Bundle {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	bundle, err := NewSQLiteBundle(db, limits)
	require.NoError(t, err)
	return bundle
}

func TestSQLiteBundleProcessesQueuedRuns(t *testing.T) {
	ctx := context.Background()
	bundle := newTestBundle(t, Limits{MaxSteps: 100})

	var results []any
	chain := New("ingest").
		Handle("record", func(ctx context.Context, sig Signal, state State) Result {
			results = append(results, sig.Data)
			return Halt(sig.Data)
		}).
		Build()
	require.NoError(t, bundle.Chains.Register(chain))

	require.NoError(t, bundle.Dispatcher.EnqueueRun(ctx, "ingest", NewSignal("item", "a"), nil))
	require.NoError(t, bundle.Dispatcher.EnqueueRun(ctx, "ingest", NewSignal("item", "b"), nil))

	for i := 0; i < 2; i++ {
		processed, err := bundle.Dispatcher.ProcessOne(ctx)
		require.NoError(t, err)
		require.True(t, processed)
	}
	require.Equal(t, []any{"a", "b"}, results)
}

func TestSQLiteBundleSharesStateStore(t *testing.T) {
	ctx := context.Background()
	bundle := newTestBundle(t, Limits{})

	chain := New("accumulate").
		Handle("add", func(ctx context.Context, sig Signal, state State) Result {
			total, _ := state["total"].(int)
			state["total"] = total + sig.Data.(int)
			return HaltWith(state["total"], state)
		}).
		Build()

	binding := StoreBinding{Store: bundle.Store, StoreID: "app", Key: "totals"}

	for i, n := range []int{3, 4, 5} {
		ex, err := bundle.Runner.RunWithStore(ctx, chain, NewSignal("number", n), State{}, Limits{}, binding)
		require.NoError(t, err)
		require.Equal(t, []int{3, 7, 12}[i], ex.Result)
	}

	persisted, err := bundle.Store.Get(ctx, "app", "totals")
	require.NoError(t, err)
	require.Equal(t, 12, persisted["total"])
}
