package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petrijr/sigflow/pkg/api"
)

// SQLiteStore is a StateStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

var _ StateStore = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS states (
			store_id TEXT NOT NULL,
			key TEXT NOT NULL,
			state BLOB,
			PRIMARY KEY (store_id, key)
		);`,
	)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, storeID, key string) (api.State, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM states WHERE store_id = ? AND key = ?`,
		storeID, key,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodeState(blob)
}

func (s *SQLiteStore) Put(ctx context.Context, storeID, key string, state api.State) error {
	blob, err := EncodeState(state)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO states (store_id, key, state) VALUES (?, ?, ?)
		ON CONFLICT (store_id, key) DO UPDATE SET state = excluded.state`,
		storeID, key, blob,
	)
	return err
}

func (s *SQLiteStore) Update(ctx context.Context, storeID, key string, def api.State, f func(api.State) api.State) error {
	// The whole read-modify-write happens inside one transaction; SQLite's
	// writer lock serializes concurrent updates on the same database.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current := def
	var blob []byte
	err = tx.QueryRowContext(ctx,
		`SELECT state FROM states WHERE store_id = ? AND key = ?`,
		storeID, key,
	).Scan(&blob)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// keep def
	case err != nil:
		return err
	default:
		current, err = DecodeState(blob)
		if err != nil {
			return err
		}
	}

	next, err := EncodeState(f(current))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO states (store_id, key, state) VALUES (?, ?, ?)
		ON CONFLICT (store_id, key) DO UPDATE SET state = excluded.state`,
		storeID, key, next,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, storeID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM states WHERE store_id = ? AND key = ?`,
		storeID, key,
	)
	return err
}
