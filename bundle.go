package sigflow

import (
	"database/sql"

	"github.com/petrijr/sigflow/internal/taskqueue"
	"github.com/petrijr/sigflow/pkg/dispatch"
)

// Bundle wires together a Runner, a durable task queue, a chain registry,
// and a Dispatcher that consumes run tasks from that queue.
type Bundle struct {
	Runner     *Runner
	Chains     *dispatch.ChainRegistry
	Dispatcher *dispatch.Dispatcher

	// Store persists run state in the same database as the queue; bind it
	// through a StoreBinding when runs should round-trip their state.
	Store StateStore

	// queue is kept unexported; it is primarily useful for internal
	// inspection and tests. The public API focuses on Dispatcher.
	queue taskqueue.Queue
}

// NewSQLiteBundle constructs a durable Runner + Queue + Dispatcher combo
// sharing the same SQLite database: queued run tasks and persisted state
// both live in the provided *sql.DB.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:sigflow.db?_journal=WAL")
//	bundle, err := sigflow.NewSQLiteBundle(db, sigflow.Limits{MaxSteps: 100})
//	bundle.Chains.Register(chain)
//	_ = bundle.Dispatcher.EnqueueRun(ctx, chain.Name, sig, nil)
func NewSQLiteBundle(db *sql.DB, limits Limits, opts ...Option) (*Bundle, error) {
	store, err := NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}

	q, err := taskqueue.NewSQLiteQueue(db)
	if err != nil {
		return nil, err
	}

	runner := NewRunner(opts...)
	chains := dispatch.NewChainRegistry()

	return &Bundle{
		Runner:     runner,
		Chains:     chains,
		Dispatcher: dispatch.NewWithLimits(runner, chains, q, limits),
		Store:      store,
		queue:      q,
	}, nil
}
