package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

// Engine executes handler chains. A single Engine is safe for concurrent use;
// each call to Execute is one independent, strictly sequential run.
type Engine struct {
	observer api.Observer

	mu     sync.Mutex // only for nextID
	nextID int64
}

// New creates an Engine reporting to the given observer. A nil observer is
// replaced with api.NoopObserver.
func New(obs api.Observer) *Engine {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	return &Engine{observer: obs}
}

// passOutcome is the private result of one engine pass. The pass goroutine
// writes it exactly once; keeping it off the Execution record avoids races
// with a supervisor that has already given up on the pass.
type passOutcome struct {
	status api.Status
	result any
	state  api.State
	err    error
	reason string
}

// Execute runs the chain against (sig, state) under the given limits and
// returns the normalized Execution record. The error taxonomy lives on
// Execution.Err; Execute itself never panics on handler misbehavior.
func (e *Engine) Execute(ctx context.Context, chain api.Chain, sig api.Signal, state api.State, limits api.Limits) *api.Execution {
	ex := &api.Execution{
		ID:     e.nextRunID(),
		Chain:  chain.Name,
		Status: api.StatusRunning,
	}

	col := newCollector(limits.CollectStats)

	e.observer.OnRunStart(ctx, ex)

	if err := limits.Validate(); err != nil {
		ex.Status = api.StatusFailed
		ex.Err = err
		ex.State = state
		e.finish(ctx, ex, col, limits)
		return ex
	}

	var out passOutcome
	if limits.Timeout > 0 {
		out = e.supervise(ctx, ex, chain, sig, state, limits, col)
	} else {
		out = e.runPass(ctx, ex, chain, sig, state, limits, col)
	}

	ex.Status = out.status
	ex.Result = out.result
	ex.State = out.state
	ex.Err = out.err
	ex.Reason = out.reason

	e.finish(ctx, ex, col, limits)
	return ex
}

// finish seals the stats record and notifies the observer of the terminal
// outcome.
func (e *Engine) finish(ctx context.Context, ex *api.Execution, col *collector, limits api.Limits) {
	reason := ex.Reason
	if ex.Err != nil {
		reason = ex.Err.Error()
	}
	col.finalize(ex.Status, reason)

	if limits.CollectStats && limits.ReturnStats {
		ex.Stats = col.snapshot()
	}

	if ex.Err != nil {
		e.observer.OnRunFailed(ctx, ex, ex.Err)
	} else {
		e.observer.OnRunCompleted(ctx, ex)
	}
}

// runPass is the engine's single sequential pass: a fold over the handler
// list starting from (sig, state). It only returns; it never writes to ex.
func (e *Engine) runPass(ctx context.Context, ex *api.Execution, chain api.Chain, sig api.Signal, state api.State, limits api.Limits, col *collector) passOutcome {
	strategy := limits.EffectiveStrategy()

	steps := 0
	i := 0

	for {
		if i >= len(chain.Handlers) {
			// Fell off the end of the chain: the most recent signal is the
			// run's result.
			return passOutcome{status: api.StatusCompleted, result: sig, state: state}
		}

		// Cancellation is cooperative at step granularity.
		if err := ctx.Err(); err != nil {
			return passOutcome{
				status: api.StatusFailed,
				state:  state,
				err:    fmt.Errorf("run cancelled before step %d: %w", steps+1, err),
			}
		}

		h := chain.Handlers[i]
		steps++

		// The violating invocation is still recorded in stats, but the
		// handler itself is never invoked; state stays as of the last
		// completed step.
		col.recordStep(h.Name, sig, state)
		if limits.MaxSteps > 0 && steps > limits.MaxSteps {
			return passOutcome{
				status: api.StatusFailed,
				state:  state,
				err:    &api.StepLimitError{Steps: steps, Limit: limits.MaxSteps},
			}
		}

		// A pass orphaned by a timeout must not keep reporting steps after
		// the run's terminal callback has fired.
		if !col.isSealed() {
			e.observer.OnStepStart(ctx, ex, h.Name, i, sig)
		}

		started := time.Now()
		res, panicErr := invoke(ctx, h, sig, state)
		if !col.isSealed() {
			e.observer.OnStepCompleted(ctx, ex, h.Name, i, res, time.Since(started))
		}

		if panicErr != nil {
			return passOutcome{
				status: api.StatusFailed,
				state:  state,
				err:    &api.ProcessingError{Handler: h.Name, Cause: panicErr},
			}
		}

		switch r := res.(type) {
		case api.EmitResult:
			if !col.isSealed() {
				e.observer.OnSignalEmitted(ctx, ex, r.Signal)
			}
			switch strategy {
			case api.StrategyTransform:
				sig = limits.Transform(r.Signal)
				i++
			case api.StrategyRestart:
				sig = r.Signal
				i = 0
			default:
				sig = r.Signal
				i++
			}
			state = r.State

		case api.EmitManyResult:
			// Deliberately no fan-out: the last signal wins, earlier ones
			// are observable through the Observer only. Strategies apply to
			// single Emit results, not here.
			if !col.isSealed() {
				for _, s := range r.Signals {
					e.observer.OnSignalEmitted(ctx, ex, s)
				}
			}
			if n := len(r.Signals); n > 0 {
				sig = r.Signals[n-1]
			}
			state = r.State
			i++

		case api.SkipResult:
			if limits.ContinueOnSkip {
				// Keep the current (pre-skip) signal and move on.
				state = r.State
				i++
				continue
			}
			return passOutcome{status: api.StatusCompleted, result: nil, state: r.State}

		case api.HaltResult:
			halted := state
			if r.Paired() {
				halted = r.State
			}
			return passOutcome{status: api.StatusCompleted, result: r.Value, state: halted}

		case api.FailResult:
			return passOutcome{
				status: api.StatusFailed,
				state:  r.State,
				err:    &api.HandlerError{Reason: r.Reason},
			}

		case api.BranchResult:
			// The signal is untouched; only the state branches.
			if r.Cond {
				state = r.TrueState
			} else {
				state = r.FalseState
			}
			i++

		case api.WaitResult:
			return passOutcome{
				status: api.StatusWaiting,
				state:  r.State,
				reason: r.Reason,
			}

		default:
			return passOutcome{
				status: api.StatusFailed,
				state:  state,
				err:    &api.ProtocolError{Handler: h.Name, Value: res},
			}
		}
	}
}

// invoke calls the handler, converting a panic into an error so a faulty
// handler cannot take the whole run down.
func invoke(ctx context.Context, h api.Handler, sig api.Signal, state api.State) (res api.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = nil
			if pe, ok := p.(error); ok {
				err = pe
				return
			}
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if h.Fn == nil {
		return nil, nil // interpreted as a protocol violation by the caller
	}
	return h.Fn(ctx, sig, state), nil
}

func (e *Engine) nextRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	return fmt.Sprintf("run-%d", e.nextID)
}
