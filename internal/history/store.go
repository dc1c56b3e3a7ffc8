// internal/history/store.go
package history

import (
	"database/sql"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists executed queries/aggregations in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the history database under the XDG data directory.
func NewStore() (*Store, error) {
	dbPath, err := xdg.DataFile("mongolens/history.db")
	if err != nil {
		return nil, err
	}
	return NewStoreAt(dbPath)
}

// NewStoreAt opens (and migrates) a history database at an explicit path.
func NewStoreAt(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			connection TEXT NOT NULL,
			target TEXT NOT NULL,
			kind TEXT NOT NULL,
			spec TEXT NOT NULL,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			duration_ms INTEGER NOT NULL,
			doc_count INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_history_connection ON history(connection);
		CREATE INDEX IF NOT EXISTS idx_history_executed_at ON history(executed_at);
	`)
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	// Best-effort retention sweep on open.
	_ = store.cleanup()
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new execution into history and fills in its id.
func (s *Store) Add(entry *Entry) error {
	res, err := s.db.Exec(`
		INSERT INTO history (connection, target, kind, spec, executed_at, duration_ms, doc_count, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Connection,
		entry.Target,
		entry.Kind,
		entry.Spec,
		entry.ExecutedAt,
		entry.DurationMs,
		entry.DocCount,
		entry.Status,
		entry.Error,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// List returns the most recent entries for a connection, newest first.
func (s *Store) List(connection string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, connection, target, kind, spec, executed_at, duration_ms, doc_count, status, error
		FROM history
		WHERE connection = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, connection, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.Connection, &e.Target, &e.Kind, &e.Spec,
			&e.ExecutedAt, &e.DurationMs, &e.DocCount, &e.Status, &errMsg); err != nil {
			return nil, err
		}
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// cleanup removes entries older than 90 days.
func (s *Store) cleanup() error {
	_, err := s.db.Exec(`
		DELETE FROM history
		WHERE executed_at < datetime('now', '-90 days')
	`)
	return err
}
