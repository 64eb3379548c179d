// Package sqlite persists the engine state in a local SQLite database.
// The state is stored as a single versioned JSON record rather than a
// normalized schema: the engine always loads and saves the whole graph,
// so one blob per save keeps writes atomic without transactions across
// tables.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
	pkgerrors "github.com/BeadW/vyb-web-sub000/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS history_state (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	state      BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

// HistoryStore implements ports.HistoryRepository on SQLite
type HistoryStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and prepares the
// schema. WAL keeps reads non-blocking while the async saver writes.
func Open(path string) (*HistoryStore, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// modernc.org/sqlite serializes access internally; a single connection
	// avoids SQLITE_BUSY between the saver and loader.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// NewHistoryStore wraps an already opened database, preparing the schema.
// Used by tests that hand in an in-memory database.
func NewHistoryStore(db *sql.DB) (*HistoryStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

// Save upserts the single state record
func (s *HistoryStore) Save(ctx context.Context, state aggregates.HistoryState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.NewPersistenceError("save", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history_state (id, state, updated_at)
		VALUES (1, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (id) DO UPDATE SET
			state      = excluded.state,
			updated_at = excluded.updated_at
	`, data)
	if err != nil {
		return pkgerrors.NewPersistenceError("save", err)
	}
	return nil
}

// Load reads the state record. Returns (nil, nil) when nothing has been
// saved yet.
func (s *HistoryStore) Load(ctx context.Context) (*aggregates.HistoryState, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT state FROM history_state WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.NewPersistenceError("load", err)
	}

	var state aggregates.HistoryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, pkgerrors.NewPersistenceError("load", err)
	}
	return &state, nil
}

// Close closes the underlying database
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
