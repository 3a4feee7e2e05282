package persistence

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/petrijr/sigflow/pkg/api"
)

// HistoryStore is an append-only history store for run events.
type HistoryStore interface {
	AppendEvent(ctx context.Context, ev api.RunEvent) error
	ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error)
}

// NoopHistoryStore discards all events.
type NoopHistoryStore struct{}

func (NoopHistoryStore) AppendEvent(ctx context.Context, ev api.RunEvent) error { return nil }
func (NoopHistoryStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	return nil, nil
}

// MemoryHistoryStore keeps run events in memory, for tests and local runs.
type MemoryHistoryStore struct {
	mu     sync.Mutex
	events map[string][]api.RunEvent
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{events: make(map[string][]api.RunEvent)}
}

var _ HistoryStore = (*MemoryHistoryStore)(nil)

func (s *MemoryHistoryStore) AppendEvent(ctx context.Context, ev api.RunEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.RunID] = append(s.events[ev.RunID], ev)
	return nil
}

func (s *MemoryHistoryStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evs := s.events[runID]
	out := make([]api.RunEvent, len(evs))
	copy(out, evs)
	return out, nil
}

// SQLiteHistoryStore stores run events in SQLite.
type SQLiteHistoryStore struct {
	db *sql.DB
}

var _ HistoryStore = (*SQLiteHistoryStore)(nil)

func NewSQLiteHistoryStore(db *sql.DB) (*SQLiteHistoryStore, error) {
	s := &SQLiteHistoryStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteHistoryStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			chain TEXT NOT NULL DEFAULT '',
			step INTEGER NOT NULL DEFAULT -1,
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_run_events_run_id ON run_events(run_id, id);
	`)
	return err
}

func (s *SQLiteHistoryStore) AppendEvent(ctx context.Context, ev api.RunEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_events (run_id, at, type, chain, step, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.RunID,
		at.UnixNano(),
		string(ev.Type),
		ev.Chain,
		ev.Step,
		ev.Detail,
	)
	return err
}

func (s *SQLiteHistoryStore) ListEvents(ctx context.Context, runID string) ([]api.RunEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, at, type, chain, step, detail
		FROM run_events
		WHERE run_id = ?
		ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.RunEvent
	for rows.Next() {
		var (
			id     string
			atN    int64
			typ    string
			chain  string
			step   int
			detail string
		)
		if err := rows.Scan(&id, &atN, &typ, &chain, &step, &detail); err != nil {
			return nil, err
		}
		out = append(out, api.RunEvent{
			RunID:  id,
			At:     time.Unix(0, atN),
			Type:   api.EventType(typ),
			Chain:  chain,
			Step:   step,
			Detail: detail,
		})
	}
	return out, rows.Err()
}
