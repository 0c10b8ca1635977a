package dialog

import (
	"github.com/dialtree/dialtree-go/dialog/debt"
)

// StartSentinel is the pseudo-state a fresh session starts in. It is not a
// node id; the first turn resolves it to the graph's declared start node.
const StartSentinel = "START"

// Agreement types, set by the engine when a negotiation branch commits.
const (
	AgreementNone         = ""
	AgreementCash         = "avista"
	AgreementInstallments = "parcelado"
	AgreementDiscount     = "desconto"
	AgreementDate         = "data"
)

// Entry is one history record: a user utterance or an assistant reply,
// optionally carrying the oracle invocation that produced it.
type Entry struct {
	Role string      `json:"role"`
	Text string      `json:"text"`
	Tool *ToolRecord `json:"tool,omitempty"`
}

// ToolRecord preserves an oracle invocation/result pair for bookkeeping.
// The engine never reads it back; it exists for audit and replay.
type ToolRecord struct {
	NodeID string `json:"node_id"`
	Target string `json:"target"`
	Value  string `json:"value,omitempty"`
}

// Session is the per-conversation state. One Session belongs to exactly one
// call and is never shared across conversations; turns within a call are
// strictly sequential, so no internal locking is needed.
type Session struct {
	ID string `json:"id"`

	// CurrentNode is the interactive node the conversation is waiting at,
	// or StartSentinel before the first turn.
	CurrentNode string `json:"current_node"`

	// CapturedInput is the last value extracted from the user by an INPUT
	// node (a CPF, an installment count, a date).
	CapturedInput string `json:"captured_input,omitempty"`

	// Debt is the looked-up debt record; nil until the CPF action runs.
	Debt *debt.Record `json:"debt,omitempty"`

	CustomerName string `json:"customer_name,omitempty"`

	// Agreement is the negotiation outcome so far, one of the Agreement*
	// constants.
	Agreement string `json:"agreement,omitempty"`

	NumInstallments int    `json:"num_installments,omitempty"`
	NewDueDate      string `json:"new_due_date,omitempty"`

	// Score is the credit score fetched by the API node; zero means not
	// consulted.
	Score int `json:"score,omitempty"`

	History []Entry `json:"history,omitempty"`
}

// NewSession creates a Session at the start sentinel.
func NewSession(id string) *Session {
	return &Session{ID: id, CurrentNode: StartSentinel}
}

// Turns counts user turns recorded so far.
func (s *Session) Turns() int {
	n := 0
	for _, e := range s.History {
		if e.Role == "user" {
			n++
		}
	}
	return n
}

// Updates is the set of tentative mutations produced by one engine turn.
// Pointer fields distinguish "not touched" from "set to zero value". The
// caller commits them with Apply only after the turn succeeds; a cancelled
// or failed turn discards the whole set, leaving the session at its
// pre-turn state.
type Updates struct {
	CurrentNode     *string
	CapturedInput   *string
	Debt            *debt.Record
	CustomerName    *string
	Agreement       *string
	NumInstallments *int
	NewDueDate      *string
	Score           *int
}

// Empty reports whether the turn produced no mutations.
func (u *Updates) Empty() bool {
	return u == nil || (u.CurrentNode == nil && u.CapturedInput == nil &&
		u.Debt == nil && u.CustomerName == nil && u.Agreement == nil &&
		u.NumInstallments == nil && u.NewDueDate == nil && u.Score == nil)
}

// Apply commits the updates into the session. Unset fields are untouched.
func (u *Updates) Apply(s *Session) {
	if u == nil {
		return
	}
	if u.CurrentNode != nil {
		s.CurrentNode = *u.CurrentNode
	}
	if u.CapturedInput != nil {
		s.CapturedInput = *u.CapturedInput
	}
	if u.Debt != nil {
		s.Debt = u.Debt
	}
	if u.CustomerName != nil {
		s.CustomerName = *u.CustomerName
	}
	if u.Agreement != nil {
		s.Agreement = *u.Agreement
	}
	if u.NumInstallments != nil {
		s.NumInstallments = *u.NumInstallments
	}
	if u.NewDueDate != nil {
		s.NewDueDate = *u.NewDueDate
	}
	if u.Score != nil {
		s.Score = *u.Score
	}
}

// merged returns the session as it would look after Apply, without
// mutating it. The binding resolver reads through this view so rendered
// messages always reflect the freshest data of the turn in progress.
func (u *Updates) merged(s *Session) *Session {
	view := *s
	u.Apply(&view)
	return &view
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
