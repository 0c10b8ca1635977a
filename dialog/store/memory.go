package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dialtree/dialtree-go/dialog"
)

// MemStore is an in-memory implementation of Store.
//
// Sessions are kept per call in turn order. Thread-safe; data is lost when
// the process exits, which is fine for tests and local development.
type MemStore struct {
	mu    sync.RWMutex
	turns map[string][]turnRecord // callID -> saved turns
}

type turnRecord struct {
	turn    int
	session []byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{turns: make(map[string][]turnRecord)}
}

// SaveTurn stores a deep copy of the session, so later mutations by the
// engine cannot corrupt saved history.
func (m *MemStore) SaveTurn(_ context.Context, callID string, turn int, session *dialog.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.turns[callID]
	for i, r := range records {
		if r.turn == turn {
			records[i].session = data
			return nil
		}
	}
	m.turns[callID] = append(records, turnRecord{turn: turn, session: data})
	return nil
}

// LoadLatest returns the session with the highest saved turn number.
func (m *MemStore) LoadLatest(_ context.Context, callID string) (*dialog.Session, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.turns[callID]
	if len(records) == 0 {
		return nil, 0, ErrNotFound
	}

	latest := records[0]
	for _, r := range records[1:] {
		if r.turn > latest.turn {
			latest = r
		}
	}

	var session dialog.Session
	if err := json.Unmarshal(latest.session, &session); err != nil {
		return nil, 0, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, latest.turn, nil
}

// Delete removes all turns for the call. Deleting an unknown call is a
// no-op.
func (m *MemStore) Delete(_ context.Context, callID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, callID)
	return nil
}
