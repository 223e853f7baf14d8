package statestore

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/XAbade/tap-sherpaan/types"
)

// SQLite keeps one row per stream so concurrent readers (dashboards, other
// tooling) can inspect bookmarks without parsing the tap's stdout.
type SQLite struct {
	db *sqlx.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tap_state (
	stream    TEXT NOT NULL,
	namespace TEXT NOT NULL DEFAULT '',
	cursors   TEXT NOT NULL,
	PRIMARY KEY (stream, namespace)
);`

func NewSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite state db: %s", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state table: %s", err)
	}
	return &SQLite{db: db}, nil
}

type stateRow struct {
	Stream    string `db:"stream"`
	Namespace string `db:"namespace"`
	Cursors   string `db:"cursors"`
}

func (s *SQLite) Load(state *types.State) error {
	rows := []stateRow{}
	if err := s.db.Select(&rows, `SELECT stream, namespace, cursors FROM tap_state`); err != nil {
		return fmt.Errorf("failed to load state rows: %s", err)
	}

	state.Type = types.StreamType
	state.ResetStreams()
	for _, row := range rows {
		cursors := map[string]any{}
		if err := json.Unmarshal([]byte(row.Cursors), &cursors); err != nil {
			return fmt.Errorf("failed to unmarshal cursors for stream %s: %s", row.Stream, err)
		}
		state.Streams = append(state.Streams, &types.StreamState{
			Stream:    row.Stream,
			Namespace: row.Namespace,
			Cursors:   cursors,
		})
	}
	return nil
}

func (s *SQLite) Save(state *types.State) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin state transaction: %s", err)
	}
	defer tx.Rollback()

	for _, streamState := range state.Streams {
		cursors, err := json.Marshal(streamState.Cursors)
		if err != nil {
			return fmt.Errorf("failed to marshal cursors for stream %s: %s", streamState.Stream, err)
		}
		_, err = tx.Exec(
			`INSERT INTO tap_state (stream, namespace, cursors) VALUES (?, ?, ?)
			 ON CONFLICT(stream, namespace) DO UPDATE SET cursors = excluded.cursors`,
			streamState.Stream, streamState.Namespace, string(cursors),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert state for stream %s: %s", streamState.Stream, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
