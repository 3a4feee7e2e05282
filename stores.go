package sigflow

import (
	"database/sql"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/sigflow/internal/persistence"
)

// NewSQLiteStore returns a StateStore that persists run state in a SQLite
// database. The caller is responsible for importing a SQLite driver, e.g.:
//
//	import _ "modernc.org/sqlite"
func NewSQLiteStore(db *sql.DB) (StateStore, error) {
	return persistence.NewSQLiteStore(db)
}

// NewRedisStore returns a StateStore that persists run state in Redis under
// the given key prefix (default "sigflow:").
func NewRedisStore(client *redis.Client, prefix string) StateStore {
	return persistence.NewRedisStore(client, prefix)
}

// HistoryStore is an append-only record of run events; see NewHistoryObserver.
type HistoryStore = persistence.HistoryStore

// NewMemoryHistoryStore returns an in-memory HistoryStore.
func NewMemoryHistoryStore() *persistence.MemoryHistoryStore {
	return persistence.NewMemoryHistoryStore()
}

// NewSQLiteHistoryStore returns a HistoryStore persisting events in SQLite.
func NewSQLiteHistoryStore(db *sql.DB) (HistoryStore, error) {
	return persistence.NewSQLiteHistoryStore(db)
}
