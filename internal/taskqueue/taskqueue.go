package taskqueue

import (
	"context"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

// Task is a request to run a registered chain against an input signal and
// state. Tasks carry no in-flight execution: a run either happens on a
// dispatcher after dequeue or not at all.
type Task struct {
	ID string

	// Chain is the name of the registered chain to run.
	Chain string

	// Signal and State form the run input.
	Signal api.Signal
	State  api.State

	EnqueuedAt time.Time

	// NotBefore is the earliest time this task should be eligible for
	// processing. Zero value means "immediately".
	NotBefore time.Time
}

// Queue is a simple async task queue interface.
type Queue interface {
	// Enqueue adds a task to the queue. It should respect ctx for cancellation.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue removes and returns the next task, blocking until one is available
	// or the context is cancelled.
	Dequeue(ctx context.Context) (*Task, error)

	// Len returns the approximate number of tasks queued.
	Len() int
}
