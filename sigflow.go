package sigflow

import (
	"context"
	"errors"

	"github.com/petrijr/sigflow/internal/engine"
	"github.com/petrijr/sigflow/internal/persistence"
	"github.com/petrijr/sigflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Signal               = api.Signal
	Meta                 = api.Meta
	State                = api.State
	Result               = api.Result
	Handler              = api.Handler
	HandlerFunc          = api.HandlerFunc
	Chain                = api.Chain
	Limits               = api.Limits
	Strategy             = api.Strategy
	Execution            = api.Execution
	ExecutionStats       = api.ExecutionStats
	Status               = api.Status
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	NoopObserver         = api.NoopObserver
	CompositeObserver    = api.CompositeObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
)

// Re-export signal constructors and result protocol helpers.

var (
	NewSignal    = api.NewSignal
	DeriveSignal = api.Derive

	Emit     = api.Emit
	EmitMany = api.EmitMany
	Skip     = api.Skip
	Halt     = api.Halt
	HaltWith = api.HaltWith
	Fail     = api.Fail
	Branch   = api.Branch
	Wait     = api.Wait

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export strategy and status values for convenience.

const (
	StrategyForward   = api.StrategyForward
	StrategyTransform = api.StrategyTransform
	StrategyRestart   = api.StrategyRestart

	StatusCompleted = api.StatusCompleted
	StatusFailed    = api.StatusFailed
	StatusWaiting   = api.StatusWaiting
	StatusTimedOut  = api.StatusTimedOut
)

// StateStore persists run state between independent runs; see NewMemoryStore,
// NewSQLiteStore and NewRedisStore.
type StateStore = persistence.StateStore

// ErrStateNotFound is returned by state stores for missing keys.
var ErrStateNotFound = persistence.ErrNotFound

// StoreBinding names a slot in a StateStore that a run loads its initial
// state from and persists its final state to.
type StoreBinding struct {
	Store   StateStore
	StoreID string
	Key     string
}

// Runner wires the execution engine, the deadline supervisor and the
// statistics collector together behind the api.Runner façade.
type Runner struct {
	engine *engine.Engine
}

var _ api.Runner = (*Runner)(nil)

// Option configures a Runner.
type Option func(*runnerConfig)

type runnerConfig struct {
	observer api.Observer
}

// WithObserver attaches an observer to every run executed by the Runner.
func WithObserver(obs api.Observer) Option {
	return func(c *runnerConfig) {
		c.observer = obs
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	var cfg runnerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner{
		engine: engine.New(cfg.observer),
	}
}

// Run executes the chain against (sig, state) under limits. The returned
// error mirrors Execution.Err; the Execution record is always non-nil and
// carries the final state, the result value, and (when requested) the
// finalized statistics.
func (r *Runner) Run(ctx context.Context, chain Chain, sig Signal, state State, limits Limits) (*Execution, error) {
	ex := r.engine.Execute(ctx, chain, sig, state, limits)
	return ex, ex.Err
}

// RunWithStore is Run with state persistence around it: the initial state is
// loaded from the binding (a missing key falls back to the provided state),
// and on any non-error outcome the final state is written back with engine
// bookkeeping keys stripped.
func (r *Runner) RunWithStore(ctx context.Context, chain Chain, sig Signal, state State, limits Limits, binding StoreBinding) (*Execution, error) {
	if binding.Store == nil {
		return nil, errors.New("sigflow: store binding has no store")
	}

	loaded, err := binding.Store.Get(ctx, binding.StoreID, binding.Key)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		// keep the caller-provided state
	case err != nil:
		return nil, err
	default:
		state = loaded
	}

	ex, runErr := r.Run(ctx, chain, sig, state, limits)
	if runErr != nil {
		return ex, runErr
	}

	if err := binding.Store.Put(ctx, binding.StoreID, binding.Key, api.StripReserved(ex.State)); err != nil {
		return ex, err
	}
	return ex, nil
}

// Run executes a chain on a throwaway Runner with no observer. Convenience
// for one-shot runs and tests.
func Run(ctx context.Context, chain Chain, sig Signal, state State, limits Limits) (*Execution, error) {
	return NewRunner().Run(ctx, chain, sig, state, limits)
}

// Store constructors. These wrap the internal persistence package so
// external callers never need to import internal packages.

// NewMemoryStore returns a StateStore backed entirely by process memory.
func NewMemoryStore() StateStore {
	return persistence.NewMemoryStore()
}
