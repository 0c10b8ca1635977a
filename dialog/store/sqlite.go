package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dialtree/dialtree-go/dialog"
)

// SQLiteStore is a SQLite implementation of Store.
//
// One file, zero setup, WAL mode for concurrent reads. Suits a single
// gateway process that must survive restarts; for multi-worker deployments
// use MySQLStore.
//
// Example:
//
//	store, err := store.NewSQLiteStore("./calls.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use ":memory:" as the path for a throwaway test database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path, enables
// WAL mode and creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite supports a single writer; keep one connection so the WAL
	// pragmas apply to every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS call_turns (
			call_id    TEXT    NOT NULL,
			turn       INTEGER NOT NULL,
			node_id    TEXT    NOT NULL,
			session    TEXT    NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (call_id, turn)
		)`)
	return err
}

// SaveTurn upserts the session for (callID, turn).
func (s *SQLiteStore) SaveTurn(ctx context.Context, callID string, turn int, session *dialog.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO call_turns (call_id, turn, node_id, session)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(call_id, turn) DO UPDATE SET
			node_id = excluded.node_id,
			session = excluded.session`,
		callID, turn, session.CurrentNode, string(data))
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// LoadLatest returns the highest-turn session for the call.
func (s *SQLiteStore) LoadLatest(ctx context.Context, callID string) (*dialog.Session, int, error) {
	var (
		data string
		turn int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session, turn FROM call_turns
		WHERE call_id = ?
		ORDER BY turn DESC
		LIMIT 1`, callID).Scan(&data, &turn)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load latest: %w", err)
	}

	var session dialog.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, 0, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, turn, nil
}

// Delete removes every turn for the call.
func (s *SQLiteStore) Delete(ctx context.Context, callID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM call_turns WHERE call_id = ?`, callID); err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
