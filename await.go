package sigflow

import (
	"context"
	"errors"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

// ErrAwaitTimeout is returned by RunAwait when the waiting chain never moved
// past its waiting outcome within the await budget.
var ErrAwaitTimeout = errors.New("sigflow: await timed out while chain was waiting")

// AwaitConfig bounds a RunAwait loop.
type AwaitConfig struct {
	// Interval is the pause between attempts. Zero means 100ms.
	Interval time.Duration

	// Timeout bounds the whole await loop. Zero means no bound beyond ctx.
	Timeout time.Duration

	// MaxAttempts caps the number of runs. Zero means unbounded.
	MaxAttempts int
}

// attemptsKey tracks await attempts inside run state. It lives under the
// reserved prefix, so it is stripped before state is persisted.
const attemptsKey = api.ReservedStatePrefix + "await_attempts"

// RunAwait runs the chain and, as long as the outcome is a waiting one,
// retries it with a pause in between. The engine itself never retries a
// Wait result; this loop is the caller-side policy layered on top of it.
//
// Each retry threads the previous run's state forward (the resource being
// waited on usually parks again until some state change lets it proceed)
// and records the attempt count under the reserved state prefix.
func (r *Runner) RunAwait(ctx context.Context, chain Chain, sig Signal, state State, limits Limits, cfg AwaitConfig) (*Execution, error) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	var deadline <-chan time.Time
	if cfg.Timeout > 0 {
		timer := time.NewTimer(cfg.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	attempts := 0
	for {
		attempts++
		ex, err := r.Run(ctx, chain, sig, state, limits)
		if err != nil || ex.Status != StatusWaiting {
			return ex, err
		}
		if cfg.MaxAttempts > 0 && attempts >= cfg.MaxAttempts {
			return ex, ErrAwaitTimeout
		}

		state = ex.State
		if state == nil {
			state = State{}
		}
		state[attemptsKey] = attempts

		select {
		case <-ctx.Done():
			return ex, ctx.Err()
		case <-deadline:
			return ex, ErrAwaitTimeout
		case <-time.After(interval):
		}
	}
}
