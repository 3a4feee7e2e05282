package api

import "time"

// EventType identifies a run history event.
type EventType string

const (
	EventRunEnqueued  EventType = "run.enqueued"
	EventRunStarted   EventType = "run.started"
	EventRunWaiting   EventType = "run.waiting"
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"

	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"

	EventSignalEmitted EventType = "signal.emitted"
)

// RunEvent is a minimal append-only history record for audit/debugging.
// It is intentionally small and stable; richer history can be layered later.
type RunEvent struct {
	RunID string
	At    time.Time
	Type  EventType

	// Optional context.
	Chain string
	Step  int

	// Small, human-oriented details (e.g. signal type, error string).
	// Keep this low-volume: do NOT dump large payloads here.
	Detail string
}
