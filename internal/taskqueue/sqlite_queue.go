package taskqueue

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteQueue is a persistent task queue implementation backed by SQLite.
// It is safe for concurrent use for our purposes, using simple FIFO semantics
// based on an auto-incrementing id.
type SQLiteQueue struct {
	db           *sql.DB
	pollInterval time.Duration
}

// NewSQLiteQueue initializes the tasks table in the given DB and returns a new queue.
func NewSQLiteQueue(db *sql.DB) (*SQLiteQueue, error) {
	q := &SQLiteQueue{
		db:           db,
		pollInterval: 20 * time.Millisecond,
	}
	if err := q.initSchema(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *SQLiteQueue) initSchema() error {
	_, err := q.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chain TEXT NOT NULL,
			payload BLOB NOT NULL,
			enqueued_at INTEGER NOT NULL,
			not_before INTEGER NOT NULL
		);
	`)
	return err
}

var _ Queue = (*SQLiteQueue)(nil)

func (q *SQLiteQueue) Enqueue(ctx context.Context, t Task) error {
	now := time.Now()
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = now
	}

	payload, err := EncodeTask(t)
	if err != nil {
		return err
	}

	notBefore := t.EnqueuedAt.UnixNano()
	if !t.NotBefore.IsZero() {
		notBefore = t.NotBefore.UnixNano()
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO run_tasks (chain, payload, enqueued_at, not_before)
		VALUES (?, ?, ?, ?)`,
		t.Chain,
		payload,
		t.EnqueuedAt.UnixNano(),
		notBefore,
	)
	return err
}

func (q *SQLiteQueue) Dequeue(ctx context.Context) (*Task, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		now := time.Now().UnixNano()

		tx, err := q.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}

		var (
			id      int64
			payload []byte
		)

		row := tx.QueryRowContext(ctx, `
			SELECT id, payload
			FROM run_tasks
			WHERE not_before <= ?
			ORDER BY not_before, id
			LIMIT 1`, now)
		err = row.Scan(&id, &payload)
		if err != nil {
			_ = tx.Rollback()
			if errors.Is(err, sql.ErrNoRows) {
				// Nothing available: sleep a bit and retry.
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(q.pollInterval):
					continue
				}
			}
			return nil, err
		}

		// Delete the row we just claimed.
		if _, err := tx.ExecContext(ctx, `DELETE FROM run_tasks WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, err
		}

		return DecodeTask(payload)
	}
}

func (q *SQLiteQueue) Len() int {
	var n int
	if err := q.db.QueryRow(`SELECT COUNT(*) FROM run_tasks`).Scan(&n); err != nil {
		return 0
	}
	return n
}
