package dialog

import "fmt"

// EngineError represents a fatal configuration problem hit while executing
// a turn. Recoverable conditions (oracle failures, invalid user values)
// never produce an EngineError; they degrade to re-prompting instead.
//
// Codes:
//   - TRANSITION_CYCLE: auto-advance revisited a node within one turn
//   - NIL_GRAPH: engine built without a flow graph
type EngineError struct {
	Message string
	Code    string
	NodeID  string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("engine error [%s] at node %q: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("engine error [%s]: %s", e.Code, e.Message)
}
