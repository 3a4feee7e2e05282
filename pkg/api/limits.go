package api

import (
	"errors"
	"time"
)

// Strategy selects what signal the next handler sees after an Emit.
type Strategy string

const (
	// StrategyForward passes the emitted signal through unchanged.
	StrategyForward Strategy = "forward"

	// StrategyTransform passes the emitted signal through Limits.Transform
	// before handing it to the next handler.
	StrategyTransform Strategy = "transform"

	// StrategyRestart re-enters the chain from the first handler, with the
	// emitted signal as the new input and the handler's returned state as
	// the new state. This turns the chain into an implicit loop body, so a
	// step or time ceiling is mandatory in practice; the engine imposes no
	// implicit bound of its own.
	StrategyRestart Strategy = "restart"
)

// Limits configures the ceilings and policies for one run. The zero value
// means: unbounded steps and time, no stats, Forward strategy, and skip
// halts the run.
type Limits struct {
	// MaxSteps caps the number of handler invocations. 0 means unbounded.
	MaxSteps int

	// Timeout is the wall-clock budget for the whole run. 0 means unbounded.
	Timeout time.Duration

	// CollectStats enables the statistics collector. When false the
	// collector is a no-op and allocates nothing.
	CollectStats bool

	// ReturnStats controls whether collected stats are attached to the
	// Execution returned to the caller. It has no effect when CollectStats
	// is false.
	ReturnStats bool

	// ContinueOnSkip makes a Skip result continue to the next handler,
	// carrying the pre-skip signal forward, instead of halting the run.
	ContinueOnSkip bool

	// Strategy selects the signal-forwarding strategy for Emit results.
	// Empty means StrategyForward.
	Strategy Strategy

	// Transform is the signal function applied under StrategyTransform.
	// Required iff Strategy is StrategyTransform.
	Transform func(Signal) Signal
}

var (
	// ErrTransformRequired is returned by Validate when StrategyTransform is
	// selected without a Transform function.
	ErrTransformRequired = errors.New("strategy \"transform\" requires a transform function")

	// ErrUnknownStrategy is returned by Validate for a strategy outside the
	// known set.
	ErrUnknownStrategy = errors.New("unknown signal strategy")
)

// Validate checks the limits for internal consistency.
func (l Limits) Validate() error {
	switch l.Strategy {
	case "", StrategyForward, StrategyRestart:
		// Transform function is ignored for these.
	case StrategyTransform:
		if l.Transform == nil {
			return ErrTransformRequired
		}
	default:
		return ErrUnknownStrategy
	}
	return nil
}

// EffectiveStrategy resolves the empty strategy to the default.
func (l Limits) EffectiveStrategy() Strategy {
	if l.Strategy == "" {
		return StrategyForward
	}
	return l.Strategy
}
