package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/dialtree/dialtree-go/dialog"
)

// MySQLStore is a MySQL/MariaDB implementation of Store for deployments
// where several gateway workers share one session database.
//
// DSN format follows go-sql-driver/mysql:
//
//	user:password@tcp(localhost:3306)/dialtree?parseTime=true
//
// Never hardcode credentials; read the DSN from the environment:
//
//	store, err := store.NewMySQLStore(os.Getenv("MYSQL_DSN"))
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a pooled connection, verifies it and creates the
// schema.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS call_turns (
			call_id    VARCHAR(128) NOT NULL,
			turn       INT          NOT NULL,
			node_id    VARCHAR(128) NOT NULL,
			session    JSON         NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (call_id, turn)
		) ENGINE=InnoDB`)
	return err
}

// SaveTurn upserts the session for (callID, turn).
func (s *MySQLStore) SaveTurn(ctx context.Context, callID string, turn int, session *dialog.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO call_turns (call_id, turn, node_id, session)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			node_id = VALUES(node_id),
			session = VALUES(session)`,
		callID, turn, session.CurrentNode, string(data))
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// LoadLatest returns the highest-turn session for the call.
func (s *MySQLStore) LoadLatest(ctx context.Context, callID string) (*dialog.Session, int, error) {
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
func (s *MySQLStore) Delete(ctx context.Context, callID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM call_turns WHERE call_id = ?`, callID); err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
