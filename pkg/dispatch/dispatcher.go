package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/sigflow/internal/taskqueue"
	"github.com/petrijr/sigflow/pkg/api"
)

// Dispatcher pulls run tasks from a Queue and executes them on a Runner.
// Several goroutines may call ProcessOne on the same Dispatcher to scale
// processing within one process.
type Dispatcher struct {
	runner api.Runner
	chains *ChainRegistry
	queue  taskqueue.Queue
	limits api.Limits
}

// New creates a Dispatcher that runs every task under zero-value limits.
func New(runner api.Runner, chains *ChainRegistry, queue taskqueue.Queue) *Dispatcher {
	return NewWithLimits(runner, chains, queue, api.Limits{})
}

// NewWithLimits creates a Dispatcher that runs every task under the given
// limits. Tasks carry no limits of their own: limits contain function values
// (the transform) and are process-local configuration, not queue payload.
func NewWithLimits(runner api.Runner, chains *ChainRegistry, queue taskqueue.Queue, limits api.Limits) *Dispatcher {
	return &Dispatcher{
		runner: runner,
		chains: chains,
		queue:  queue,
		limits: limits,
	}
}

// EnqueueRun enqueues a task to run the named chain asynchronously.
// It does NOT run the chain itself; that is done by ProcessOne.
func (d *Dispatcher) EnqueueRun(ctx context.Context, chainName string, sig api.Signal, state api.State) error {
	return d.queue.Enqueue(ctx, taskqueue.Task{
		ID:         uuid.NewString(),
		Chain:      chainName,
		Signal:     sig,
		State:      state,
		EnqueuedAt: time.Now(),
	})
}

// EnqueueRunAt enqueues a run task that becomes eligible no earlier than at.
func (d *Dispatcher) EnqueueRunAt(ctx context.Context, chainName string, sig api.Signal, state api.State, at time.Time) error {
	return d.queue.Enqueue(ctx, taskqueue.Task{
		ID:         uuid.NewString(),
		Chain:      chainName,
		Signal:     sig,
		State:      state,
		EnqueuedAt: time.Now(),
		NotBefore:  at,
	})
}

// ProcessOne pulls a single task from the queue and processes it.
// Returns (processed, error):
//   - processed == false, err != nil: nothing processed (dequeue failed or
//     ctx cancelled before a task was obtained)
//   - processed == false, err == nil: the queue yielded no task; callers
//     loop and try again
//   - processed == true: a task was processed; err reflects the run outcome.
func (d *Dispatcher) ProcessOne(ctx context.Context) (bool, error) {
	task, err := d.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	chain, err := d.chains.Get(task.Chain)
	if err != nil {
		return true, err
	}

	_, runErr := d.runner.Run(ctx, chain, task.Signal, task.State, d.limits)
	return true, runErr
}

// ErrStopped is returned by Serve when its context ends.
var ErrStopped = errors.New("dispatcher stopped")

// Serve processes tasks until ctx is cancelled. Run errors are reported to
// onError (which may be nil) and do not stop the loop; a single bad task
// must not kill the serving goroutine.
func (d *Dispatcher) Serve(ctx context.Context, onError func(error)) error {
	for {
		// A (false, nil) outcome simply loops: the next iteration blocks on
		// the queue again.
		_, err := d.ProcessOne(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ErrStopped
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
