package engine

import (
	"context"
	"time"

	"github.com/petrijr/sigflow/internal/persistence"
	"github.com/petrijr/sigflow/pkg/api"
)

// supervise runs one engine pass under a wall-clock budget, racing pass
// completion against the deadline from a second goroutine.
//
// Cancellation is cooperative: the pass checks its context between handler
// invocations, but a handler body that blocks past the deadline cannot be
// preempted. In that case the supervisor stops waiting and returns the
// timeout outcome while the orphaned pass runs to completion unobserved;
// its late writes land in the sealed collector and are dropped. Handlers
// that may run long should poll ctx themselves.
//
// The timeout outcome carries the original pre-run state. Because the
// deadline may elapse mid-handler, partial mutations inside that handler
// cannot be trusted, so the whole aborted pass's state is discarded.
func (e *Engine) supervise(ctx context.Context, ex *api.Execution, chain api.Chain, sig api.Signal, state api.State, limits api.Limits, col *collector) passOutcome {
	original, err := persistence.CloneState(state)
	if err != nil {
		// State that cannot round-trip through the codec cannot be restored
		// on timeout either; surface that before running anything.
		return passOutcome{
			status: api.StatusFailed,
			state:  state,
			err:    err,
		}
	}

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan passOutcome, 1)
	go func() {
		done <- e.runPass(passCtx, ex, chain, sig, state, limits, col)
	}()

	timer := time.NewTimer(limits.Timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return out
	case <-timer.C:
		cancel()
		return passOutcome{
			status: api.StatusTimedOut,
			state:  original,
			err:    &api.TimeoutError{Limit: limits.Timeout},
		}
	}
}
