package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay the run. Observers never alter run
// outcomes.
//
// Step and signal callbacks stop once the run's terminal callback fires:
// when a timeout orphans a still-running pass, that pass's remaining steps
// are suppressed (best effort; a callback already in flight when the
// deadline lands may still be delivered).
type Observer interface {
	// OnRunStart is called once, before the first handler is invoked.
	OnRunStart(ctx context.Context, ex *Execution)

	// OnRunCompleted is called when a run reaches StatusCompleted or
	// StatusWaiting.
	OnRunCompleted(ctx context.Context, ex *Execution)

	// OnRunFailed is called when a run ends with an error outcome,
	// including step-limit violations and timeouts.
	OnRunFailed(ctx context.Context, ex *Execution, err error)

	// OnStepStart is called before invoking a handler. index is the
	// 0-based position in the chain; sig is the signal the handler will
	// observe.
	OnStepStart(ctx context.Context, ex *Execution, handler string, index int, sig Signal)

	// OnStepCompleted is called after a handler returns, with the result it
	// produced and the invocation duration.
	OnStepCompleted(ctx context.Context, ex *Execution, handler string, index int, res Result, d time.Duration)

	// OnSignalEmitted is called for every signal a handler emits, including
	// the non-forwarded leading signals of an EmitMany result.
	OnSignalEmitted(ctx context.Context, ex *Execution, sig Signal)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, ex *Execution)                 {}
func (NoopObserver) OnRunCompleted(ctx context.Context, ex *Execution)             {}
func (NoopObserver) OnRunFailed(ctx context.Context, ex *Execution, err error)     {}
func (NoopObserver) OnStepStart(ctx context.Context, ex *Execution, handler string, index int, sig Signal) {
}
func (NoopObserver) OnStepCompleted(ctx context.Context, ex *Execution, handler string, index int, res Result, d time.Duration) {
}
func (NoopObserver) OnSignalEmitted(ctx context.Context, ex *Execution, sig Signal) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, ex *Execution) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, ex)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, ex *Execution) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, ex)
	}
}

func (c *CompositeObserver) OnRunFailed(ctx context.Context, ex *Execution, err error) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, ex, err)
	}
}

func (c *CompositeObserver) OnStepStart(ctx context.Context, ex *Execution, handler string, index int, sig Signal) {
	for _, o := range c.observers {
		o.OnStepStart(ctx, ex, handler, index, sig)
	}
}

func (c *CompositeObserver) OnStepCompleted(ctx context.Context, ex *Execution, handler string, index int, res Result, d time.Duration) {
	for _, o := range c.observers {
		o.OnStepCompleted(ctx, ex, handler, index, res, d)
	}
}

func (c *CompositeObserver) OnSignalEmitted(ctx context.Context, ex *Execution, sig Signal) {
	for _, o := range c.observers {
		o.OnSignalEmitted(ctx, ex, sig)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs run / step lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, ex *Execution) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("chain", ex.Chain),
		slog.String("run_id", ex.ID),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, ex *Execution) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("chain", ex.Chain),
		slog.String("run_id", ex.ID),
		slog.String("status", string(ex.Status)),
	)
}

func (o *LoggingObserver) OnRunFailed(ctx context.Context, ex *Execution, err error) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("chain", ex.Chain),
		slog.String("run_id", ex.ID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStepStart(ctx context.Context, ex *Execution, handler string, index int, sig Signal) {
	o.Logger.DebugContext(ctx, "step_start",
		slog.String("chain", ex.Chain),
		slog.String("run_id", ex.ID),
		slog.String("handler", handler),
		slog.Int("step_index", index),
		slog.String("signal_type", sig.Type),
		slog.String("trace_id", sig.Meta.TraceID),
	)
}

func (o *LoggingObserver) OnStepCompleted(ctx context.Context, ex *Execution, handler string, index int, res Result, d time.Duration) {
	level := slog.LevelDebug
	if _, failed := res.(FailResult); failed {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_completed",
		slog.String("chain", ex.Chain),
		slog.String("run_id", ex.ID),
		slog.String("handler", handler),
		slog.Int("step_index", index),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnSignalEmitted(ctx context.Context, ex *Execution, sig Signal) {
	o.Logger.DebugContext(ctx, "signal_emitted",
		slog.String("chain", ex.Chain),
		slog.String("run_id", ex.ID),
		slog.String("signal_type", sig.Type),
		slog.String("trace_id", sig.Meta.TraceID),
		slog.String("correlation_id", sig.Meta.CorrelationID),
	)
}

// BasicMetrics collects simple counters and aggregate step durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted       atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	stepsCompleted    atomic.Int64
	signalsEmitted    atomic.Int64
	totalStepDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	PendingRuns   int64

	StepsCompleted  int64
	SignalsEmitted  int64
	AvgStepDuration time.Duration
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, ex *Execution) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunCompleted(ctx context.Context, ex *Execution) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnRunFailed(ctx context.Context, ex *Execution, err error) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnStepCompleted(ctx context.Context, ex *Execution, handler string, index int, res Result, d time.Duration) {
	m.stepsCompleted.Add(1)
	m.totalStepDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics) OnSignalEmitted(ctx context.Context, ex *Execution, sig Signal) {
	m.signalsEmitted.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	steps := m.stepsCompleted.Load()
	totalNs := m.totalStepDuration.Load()

	var avg time.Duration
	if steps > 0 {
		avg = time.Duration(totalNs / steps)
	}

	return BasicMetricsSnapshot{
		RunsStarted:     started,
		RunsCompleted:   completed,
		RunsFailed:      failed,
		PendingRuns:     started - completed - failed,
		StepsCompleted:  steps,
		SignalsEmitted:  m.signalsEmitted.Load(),
		AvgStepDuration: avg,
	}
}
