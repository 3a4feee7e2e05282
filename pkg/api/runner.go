package api

import "context"

// Runner is the high-level run façade: it executes one chain against one
// (signal, state) pair under the given limits and returns the normalized
// Execution record.
//
// The returned error mirrors Execution.Err, so callers can use either the
// record or plain error handling. A waiting outcome is not an error.
type Runner interface {
	Run(ctx context.Context, chain Chain, sig Signal, state State, limits Limits) (*Execution, error)
}
