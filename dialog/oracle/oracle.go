// Package oracle defines the classifier seam between the dialog engine and
// whatever understands the user's speech.
//
// The engine never interprets an utterance itself. Each turn it hands the
// utterance, the current node and a short history window to a Classifier and
// gets back a Decision: which declared branch to take, and optionally a value
// extracted from the utterance (an installment count, a date, a CPF).
//
// Implementations in subpackages wrap hosted LLMs (openai, anthropic, google);
// Mock in this package scripts decisions for tests. Swapping implementations
// never touches the engine.
package oracle

import (
	"context"

	"github.com/dialtree/dialtree-go/dialog/flow"
)

// Standard roles for history messages, aligned with the chat conventions of
// the hosted providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one history entry in the classifier's context window.
type Message struct {
	Role    string
	Content string
}

// Request carries everything a classifier may use for one decision.
type Request struct {
	// Utterance is the user's transcribed speech for this turn. Empty for
	// machine-initiated decisions (ACTION nodes that branch silently).
	Utterance string

	// NodeID and Node identify where the conversation currently stands.
	NodeID string
	Node   *flow.Node

	// History is a bounded window of recent turns, oldest first.
	History []Message
}

// Decision is a classifier's answer for one request.
type Decision struct {
	// Target is the chosen successor node id. It must be one of the
	// request node's declared targets; returning the current node id
	// signals "no decision made" and the engine will re-ask.
	Target string

	// Value is the raw value extracted from the utterance on INPUT nodes
	// ("5", "15/09", "123.456.789-01"). Empty when nothing was captured.
	Value string

	// Reasoning is optional free text for debugging. The engine ignores it.
	Reasoning string
}

// Classifier maps an utterance in node context to a transition decision.
//
// Implementations should respect ctx cancellation; the engine treats any
// error as "no decision made" and stays on the current node.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Decision, error)
}

// Stay builds the "no decision made" answer for a request.
func Stay(req Request) Decision {
	return Decision{Target: req.NodeID}
}
