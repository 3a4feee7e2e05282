package api

// Status represents the outcome of a run.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusWaiting   Status = "WAITING"
	StatusTimedOut  Status = "TIMED_OUT"
)

// Execution is the normalized record of one run. The four outcome shapes are
// (Status ok/error) crossed with (Stats present/absent, per Limits).
type Execution struct {
	// ID identifies this run.
	ID string

	// Chain is the name of the chain that was executed.
	Chain string

	// Status is the final status.
	Status Status

	// Result is the run's result value: the halt value for halted runs, the
	// most recent signal for runs that fell off the end of the chain, or
	// nil for skipped runs.
	Result any

	// State is the final state: the last handler's returned state on
	// success, the last-known-good state on limit violations, or the
	// pristine pre-run state on timeout.
	State State

	// Err is the run's error for failed or timed-out runs, nil otherwise.
	// It is one of the typed errors in this package.
	Err error

	// Reason is the wait reason for waiting runs.
	Reason string

	// Stats is the finalized statistics record, when both collection and
	// return were requested; nil otherwise.
	Stats *ExecutionStats
}

// OK reports whether the run finished without an error. Waiting runs count
// as ok: they are a deliberate, non-error observation.
func (e *Execution) OK() bool {
	return e.Err == nil
}
