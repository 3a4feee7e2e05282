package engine

import (
	"sync"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

// collector accumulates ExecutionStats for one run. It is a pure function of
// (current stats, handler identity, signal, state); it observes every step
// without altering outcomes.
//
// The mutex exists because a timed-out pass may be orphaned mid-handler and
// still try to record its next step while the caller reads the finalized
// record. Once sealed, further recordings are dropped.
type collector struct {
	mu     sync.Mutex
	stats  *api.ExecutionStats
	sealed bool
}

// newCollector returns a collector, or a disabled no-op one that allocates
// no stats record when enabled is false.
func newCollector(enabled bool) *collector {
	if !enabled {
		return &collector{}
	}
	return &collector{stats: api.NewExecutionStats()}
}

// recordStep records one handler invocation: the handler identity, the
// pre-invocation signal type, and the current state size.
func (c *collector) recordStep(handler string, sig api.Signal, state api.State) {
	if c.stats == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return
	}

	c.stats.Steps++
	c.stats.SignalTypes[sig.Type]++
	c.stats.HandlerCalls[handler]++
	if n := len(state); n > c.stats.MaxStateSize {
		c.stats.MaxStateSize = n
	}
}

// finalize seals the collector exactly once, stamping completeness, elapsed
// time and the run outcome on the stats record when one exists. Later calls
// are no-ops. Sealing happens for stats-disabled runs too: the engine also
// uses the seal to silence an orphaned pass's observer callbacks.
func (c *collector) finalize(outcome api.Status, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return
	}
	c.sealed = true

	if c.stats == nil {
		return
	}

	c.stats.Complete = true
	c.stats.Elapsed = time.Since(c.stats.StartTime)
	c.stats.Outcome = outcome
	c.stats.Reason = reason
}

// isSealed reports whether finalize has run.
func (c *collector) isSealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

// snapshot returns the stats record. It is only meaningful after finalize;
// the sealed record is no longer mutated, so sharing it is safe.
func (c *collector) snapshot() *api.ExecutionStats {
	if c.stats == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
