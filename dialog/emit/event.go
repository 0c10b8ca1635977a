package emit

// Event represents an observability event emitted during a conversation.
//
// Events provide insight into dialogue behavior:
//   - Turn start/complete
//   - Node transitions inside a turn
//   - Oracle calls and their outcomes
//   - Validation failures and fallbacks
//
// Events are emitted to an Emitter which can log to stdout, send to
// OpenTelemetry, or discard them entirely.
type Event struct {
	// CallID identifies the conversation (one phone call) that emitted
	// this event.
	CallID string

	// Turn is the sequential user-turn number within the call (1-indexed).
	// Zero for call-level events.
	Turn int

	// NodeID identifies the flow node the event refers to. Empty for
	// turn-level events.
	NodeID string

	// Msg is a short machine-friendly description, e.g. "turn_start",
	// "node_enter", "oracle_fallback", "validation_fail".
	Msg string

	// Meta carries additional structured data specific to this event.
	// Common keys:
	//   - "target": node id chosen by the oracle
	//   - "value": captured value (may be redacted upstream)
	//   - "error": error details
	//   - "duration_ms": oracle call latency
	Meta map[string]interface{}
}
