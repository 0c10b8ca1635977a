package emit

// Emitter receives observability events from the dialogue engine.
//
// Implementations should be:
//   - Non-blocking: never delay a live voice turn
//   - Thread-safe: calls may arrive from concurrent conversations
//   - Resilient: a broken backend must not crash a turn
//
// Emit should not panic; backend errors are handled internally.
type Emitter interface {
	Emit(event Event)
}
