package sigflow

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/petrijr/sigflow/internal/taskqueue"
	"github.com/petrijr/sigflow/pkg/dispatch"
)

// LocalRunner bundles a Runner, an in-memory task queue, a chain registry
// and a Dispatcher to provide a simple process-local runtime for development
// and debugging.
//
// Typical usage:
//
//	lr := sigflow.NewLocalRunner()
//	lr.MustRegister(chain)
//
//	// Synchronous run (no queue involved):
//	ex, err := lr.Runner.Run(ctx, chain, sig, nil, sigflow.Limits{})
//
//	// Asynchronous run:
//	_ = lr.StartWorkers(ctx, 2)
//	_ = lr.RunAsync(ctx, chain.Name, sig, nil)
//	...
//	lr.Stop()
type LocalRunner struct {
	// Runner executes chains for this LocalRunner.
	Runner *Runner

	// Chains holds the registered chains addressable by name.
	Chains *dispatch.ChainRegistry

	// Queue is the in-memory task queue used by the Dispatcher.
	Queue taskqueue.Queue

	// Dispatcher processes tasks from Queue using Runner.
	Dispatcher *dispatch.Dispatcher

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewLocalRunner constructs a LocalRunner with an in-memory queue and the
// given Runner options (observer etc.). Limits apply to all asynchronous
// runs; synchronous runs take their own.
func NewLocalRunner(limits Limits, opts ...Option) *LocalRunner {
	runner := NewRunner(opts...)
	chains := dispatch.NewChainRegistry()
	q := taskqueue.NewInMemoryQueue(1024)

	return &LocalRunner{
		Runner:     runner,
		Chains:     chains,
		Queue:      q,
		Dispatcher: dispatch.NewWithLimits(runner, chains, q, limits),
	}
}

// Register registers a chain for asynchronous runs by name.
func (r *LocalRunner) Register(chain Chain) error {
	return r.Chains.Register(chain)
}

// MustRegister is like Register but panics on error.
// Useful for initialization in main().
func (r *LocalRunner) MustRegister(chain Chain) {
	if err := r.Register(chain); err != nil {
		panic(err)
	}
}

// StartWorkers starts 'concurrency' goroutines that continuously process
// queued run tasks until the context is cancelled via Stop.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("sigflow: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()
			_ = r.Dispatcher.Serve(ctx, func(err error) {
				// A single bad task must not kill the worker loop.
				log.Printf("sigflow: local runner dispatch error: %v", err)
			})
		}()
	}

	return nil
}

// Stop cancels all worker goroutines started by StartWorkers and waits
// for them to exit.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// RunAsync enqueues a run of the named chain. The chain must already be
// registered.
func (r *LocalRunner) RunAsync(ctx context.Context, chainName string, sig Signal, state State) error {
	return r.Dispatcher.EnqueueRun(ctx, chainName, sig, state)
}
