package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/sigflow/internal/engine"
	"github.com/petrijr/sigflow/internal/taskqueue"
	"github.com/petrijr/sigflow/pkg/api"
)

// engineRunner adapts the internal engine to the Runner interface the way the
// public façade does.
type engineRunner struct {
	eng *engine.Engine
}

func (r *engineRunner) Run(ctx context.Context, chain api.Chain, sig api.Signal, state api.State, limits api.Limits) (*api.Execution, error) {
	ex := r.eng.Execute(ctx, chain, sig, state, limits)
	return ex, ex.Err
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *ChainRegistry, *recorder) {
	t.Helper()

	rec := &recorder{}
	chains := NewChainRegistry()
	require.NoError(t, chains.Register(api.Chain{
		Name: "record",
		Handlers: []api.Handler{
			{Name: "record", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				rec.add(sig.Data)
				return api.Halt(sig.Data)
			}},
		},
	}))

	runner := &engineRunner{eng: engine.New(nil)}
	d := New(runner, chains, taskqueue.NewInMemoryQueue(16))
	return d, chains, rec
}

// emptyQueue yields no tasks: every Dequeue returns (nil, nil).
type emptyQueue struct{}

func (emptyQueue) Enqueue(ctx context.Context, t taskqueue.Task) error { return nil }
func (emptyQueue) Dequeue(ctx context.Context) (*taskqueue.Task, error) {
	return nil, nil
}
func (emptyQueue) Len() int { return 0 }

func TestProcessOneReportsIdleQueue(t *testing.T) {
	runner := &engineRunner{eng: engine.New(nil)}
	d := New(runner, NewChainRegistry(), emptyQueue{})

	processed, err := d.ProcessOne(context.Background())
	require.NoError(t, err)
	require.False(t, processed)
}

type recorder struct {
	mu   sync.Mutex
	seen []any
}

func (r *recorder) add(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, v)
}

func (r *recorder) values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.seen))
	copy(out, r.seen)
	return out
}

func TestChainRegistry(t *testing.T) {
	reg := NewChainRegistry()

	noop := []api.Handler{api.SkipHandler("skip")}
	require.NoError(t, reg.Register(api.Chain{Name: "b", Handlers: noop}))
	require.NoError(t, reg.Register(api.Chain{Name: "a", Handlers: noop}))

	require.Error(t, reg.Register(api.Chain{Name: "a", Handlers: noop}), "duplicate names are rejected")
	require.Error(t, reg.Register(api.Chain{Handlers: noop}), "a name is required")
	require.Error(t, reg.Register(api.Chain{Name: "empty"}), "handlers are required")

	chain, err := reg.Get("a")
	require.NoError(t, err)
	require.Equal(t, "a", chain.Name)

	_, err = reg.Get("ghost")
	require.Error(t, err)

	require.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestEnqueueThenProcessOne(t *testing.T) {
	ctx := context.Background()
	d, _, rec := newTestDispatcher(t)

	require.NoError(t, d.EnqueueRun(ctx, "record", api.NewSignal("item", "payload"), nil))

	processed, err := d.ProcessOne(ctx)
	require.NoError(t, err)
	require.True(t, processed)
	require.Equal(t, []any{"payload"}, rec.values())
}

func TestProcessOneReportsUnknownChain(t *testing.T) {
	ctx := context.Background()
	d, _, rec := newTestDispatcher(t)

	require.NoError(t, d.EnqueueRun(ctx, "ghost", api.NewSignal("item", "x"), nil))

	processed, err := d.ProcessOne(ctx)
	require.True(t, processed, "the bad task is consumed")
	require.Error(t, err)
	require.Empty(t, rec.values())
}

func TestProcessOnePropagatesRunErrors(t *testing.T) {
	ctx := context.Background()

	chains := NewChainRegistry()
	require.NoError(t, chains.Register(api.Chain{
		Name: "failing",
		Handlers: []api.Handler{
			{Name: "fail", Fn: func(ctx context.Context, sig api.Signal, state api.State) api.Result {
				return api.Fail("bad input", state)
			}},
		},
	}))

	d := New(&engineRunner{eng: engine.New(nil)}, chains, taskqueue.NewInMemoryQueue(4))
	require.NoError(t, d.EnqueueRun(ctx, "failing", api.NewSignal("x", nil), nil))

	processed, err := d.ProcessOne(ctx)
	require.True(t, processed)
	reason, ok := api.IsHandlerError(err)
	require.True(t, ok, "expected a handler error, got %v", err)
	require.Equal(t, "bad input", reason)
}

func TestServeDrainsQueueUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, _, rec := newTestDispatcher(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.EnqueueRun(ctx, "record", api.NewSignal("item", i), nil))
	}
	// One poison task; Serve must keep going.
	require.NoError(t, d.EnqueueRun(ctx, "ghost", api.NewSignal("item", -1), nil))

	var (
		mu       sync.Mutex
		failures []error
	)
	done := make(chan error, 1)
	go func() {
		done <- d.Serve(ctx, func(err error) {
			mu.Lock()
			defer mu.Unlock()
			failures = append(failures, err)
		})
	}()

	require.Eventually(t, func() bool {
		return len(rec.values()) == 5
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, ErrStopped)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
}

func TestEnqueueRunAtDelaysEligibility(t *testing.T) {
	ctx := context.Background()

	// The durable queue honors NotBefore; the in-memory queue is FIFO-only,
	// so this test pins the task shape rather than timing.
	q := taskqueue.NewInMemoryQueue(4)
	chains := NewChainRegistry()
	require.NoError(t, chains.Register(api.Chain{
		Name:     "later",
		Handlers: []api.Handler{api.SkipHandler("skip")},
	}))
	d := New(&engineRunner{eng: engine.New(nil)}, chains, q)

	at := time.Now().Add(time.Hour)
	require.NoError(t, d.EnqueueRunAt(ctx, "later", api.NewSignal("x", nil), nil, at))

	task, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "later", task.Chain)
	require.NotEmpty(t, task.ID)
	require.WithinDuration(t, at, task.NotBefore, time.Second)
	require.False(t, task.EnqueuedAt.IsZero())
}
