// Package store persists conversation sessions across turns so a transport
// (telephony gateway, websocket server) can restart without losing live
// negotiations.
package store

import (
	"context"
	"errors"

	"github.com/dialtree/dialtree-go/dialog"
)

// ErrNotFound is returned when a requested call ID has no saved turns.
var ErrNotFound = errors.New("not found")

// Store provides session persistence keyed by call ID.
//
// One row is written per committed turn, so the latest row is always the
// last consistent state; a turn that failed mid-flight never reaches the
// store. Implementations:
//   - MemStore: in-memory, for tests and single-process development
//   - SQLiteStore: single-file database, zero-setup local persistence
//   - MySQLStore: shared database for multi-worker deployments
type Store interface {
	// SaveTurn persists the session as of the given turn number. Turn
	// numbers start at 1 and saving the same turn twice overwrites it.
	SaveTurn(ctx context.Context, callID string, turn int, session *dialog.Session) error

	// LoadLatest retrieves the most recently saved session for a call.
	// Returns ErrNotFound when the call has no saved turns.
	LoadLatest(ctx context.Context, callID string) (*dialog.Session, int, error)

	// Delete removes every saved turn for a call, typically after the
	// conversation reaches a terminal node and billing has been recorded.
	Delete(ctx context.Context, callID string) error
}
