// Package flow defines the static conversation graph the dialog engine walks.
//
// A flow is data, not code: it is loaded once from a JSON document, validated,
// and then shared read-only across every conversation for the lifetime of the
// process. Each node carries only the fields its type needs; the engine
// dispatches on NodeType.
package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeType classifies a node's behavior during a turn.
type NodeType string

// Node types. Interactive types halt the turn and wait for the caller to come
// back with a new utterance; transparent types are passed through automatically
// inside a single turn.
const (
	Start        NodeType = "START"
	Input        NodeType = "INPUT"
	Action       NodeType = "ACTION"
	Intent       NodeType = "INTENT"
	Decision     NodeType = "DECISION"
	Validation   NodeType = "VALIDATION"
	Confirmation NodeType = "CONFIRMATION"
	Info         NodeType = "INFO"
	API          NodeType = "API"
	EndSuccess   NodeType = "END_SUCCESS"
	EndFail      NodeType = "END_FAIL"
)

// nodeTypes is the set of recognized types, checked at load time.
var nodeTypes = map[NodeType]bool{
	Start: true, Input: true, Action: true, Intent: true, Decision: true,
	Validation: true, Confirmation: true, Info: true, API: true,
	EndSuccess: true, EndFail: true,
}

// Choice is one labeled branch of an INTENT, DECISION, CONFIRMATION or ACTION
// node: the classifier picks a Label, the engine follows the Target.
type Choice struct {
	Label  string
	Target string
}

// ChoiceList preserves the declaration order of a JSON object mapping labels
// to successor node ids. Order matters: when the classifier cannot make
// progress on a machine-initiated decision, the engine falls back to the
// first declared choice.
type ChoiceList []Choice

// UnmarshalJSON decodes {"label": "target", ...} keeping source order, which
// encoding/json's map type would discard.
func (c *ChoiceList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("choices: expected object, got %v", tok)
	}

	var list ChoiceList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("choices: non-string key %v", keyTok)
		}

		var target string
		if err := dec.Decode(&target); err != nil {
			return fmt.Errorf("choices: target for %q: %w", label, err)
		}
		list = append(list, Choice{Label: label, Target: target})
	}

	*c = list
	return nil
}

// MarshalJSON renders the list back as an object in declaration order.
func (c ChoiceList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(ch.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ch.Target)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Target returns the successor for a label, or "" when the label is not one of
// the declared choices.
func (c ChoiceList) Target(label string) string {
	for _, ch := range c {
		if ch.Label == label {
			return ch.Target
		}
	}
	return ""
}

// Labels returns the declared labels in order.
func (c ChoiceList) Labels() []string {
	out := make([]string, len(c))
	for i, ch := range c {
		out[i] = ch.Label
	}
	return out
}

// Rules are the declarative constraints of a VALIDATION node.
//
// Min/Max bound an integer captured value (e.g. installment count 2..12).
// MinDaysFromToday/MaxDaysFromToday mark a date-style rule; the engine treats
// them as a presence check on the captured value, since full calendar parsing
// of a free-form spoken date is the classifier's job.
type Rules struct {
	Min              *int `json:"min,omitempty"`
	Max              *int `json:"max,omitempty"`
	MinDaysFromToday *int `json:"min_days_from_today,omitempty"`
	MaxDaysFromToday *int `json:"max_days_from_today,omitempty"`
}

// DateRule reports whether the rules describe a date constraint.
func (r *Rules) DateRule() bool {
	return r != nil && (r.MinDaysFromToday != nil || r.MaxDaysFromToday != nil)
}

// Node is one step of the conversation graph. Immutable once loaded.
//
// Only a subset of fields is meaningful for any given Type; Validate enforces
// the per-type requirements at load time so the engine never has to.
type Node struct {
	// ID is the node's key in the graph. Filled in by Parse.
	ID string `json:"-"`

	Type NodeType `json:"type"`

	// Tag is a short stable name used in classifier prompts and telemetry.
	Tag string `json:"tag,omitempty"`

	// Message is an optional template rendered into speakable segments.
	// Variables use {{name}} markers.
	Message string `json:"message,omitempty"`

	// Description and Examples guide the external classifier; the engine
	// itself never interprets them.
	Description string   `json:"description,omitempty"`
	Examples    []string `json:"examples,omitempty"`

	// Next is the single successor of linear nodes.
	Next string `json:"next,omitempty"`

	// Intents (INTENT nodes) and Options (DECISION/CONFIRMATION/ACTION
	// nodes) map classifier labels to successors, in declaration order.
	Intents ChoiceList `json:"intents,omitempty"`
	Options ChoiceList `json:"options,omitempty"`

	// Rules constrain the captured value on VALIDATION nodes.
	Rules *Rules `json:"rules,omitempty"`

	// VALIDATION successors.
	OnSuccess string `json:"on_success,omitempty"`
	OnFail    string `json:"on_fail,omitempty"`

	// ACTION availability branch (offer checks).
	OnAvailable   string `json:"on_available,omitempty"`
	OnUnavailable string `json:"on_unavailable,omitempty"`

	// BackTo names the choice point this node returns to; kept for
	// classifier context, not followed by the engine.
	BackTo string `json:"back_to,omitempty"`

	// API node call description.
	Endpoint string `json:"endpoint,omitempty"`
	Method   string `json:"method,omitempty"`
}

// Interactive reports whether a turn must stop at this node and wait for the
// next user utterance. Terminal nodes are interactive: the engine halts there
// and stays there.
func (n *Node) Interactive() bool {
	switch n.Type {
	case Intent, Decision, Input, Confirmation, EndSuccess, EndFail:
		return true
	}
	return false
}

// Terminal reports whether this node ends the conversation.
func (n *Node) Terminal() bool {
	return n.Type == EndSuccess || n.Type == EndFail
}

// Choices returns whichever labeled branch set the node declares.
// INTENT nodes use Intents, everything else Options.
func (n *Node) Choices() ChoiceList {
	if n.Type == Intent {
		return n.Intents
	}
	return n.Options
}

// Targets returns every successor id the node declares, in declaration order
// and without duplicates. Used by load-time validation and by the
// reachability walk.
func (n *Node) Targets() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	add(n.Next)
	for _, ch := range n.Intents {
		add(ch.Target)
	}
	for _, ch := range n.Options {
		add(ch.Target)
	}
	add(n.OnSuccess)
	add(n.OnFail)
	add(n.OnAvailable)
	add(n.OnUnavailable)
	return out
}
