// Package dialog implements a scripted voice-negotiation engine: a node
// graph drives the conversation, an external oracle classifies each user
// utterance against the current node's declared branches, and messages are
// rendered into static/dynamic segments for TTS caching.
package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dialtree/dialtree-go/dialog/debt"
	"github.com/dialtree/dialtree-go/dialog/emit"
	"github.com/dialtree/dialtree-go/dialog/flow"
	"github.com/dialtree/dialtree-go/dialog/oracle"
)

// DefaultMaxHops bounds the auto-advance loop within one turn. The richest
// shipped flow traverses at most six transparent nodes per turn, so this is
// generous headroom, not a tuning knob.
const DefaultMaxHops = 32

// OfferPolicy decides whether a discount offer is available for the given
// session. It replaces an eligibility rule that lives outside this library;
// the default policy always grants the offer.
type OfferPolicy func(*Session) bool

// APIInvoker performs the external call declared by an API node and returns
// the credit score it produced.
type APIInvoker interface {
	Invoke(ctx context.Context, node *flow.Node, session *Session) (int, error)
}

// SimulatedAPI is the default APIInvoker. It fabricates a credit score from
// the session's debt record, standing in for the real scoring endpoint.
type SimulatedAPI struct{}

// Invoke returns the record's score when the lookup populated one, else a
// midline default.
func (SimulatedAPI) Invoke(_ context.Context, _ *flow.Node, session *Session) (int, error) {
	if session.Debt != nil && session.Debt.Score > 0 {
		return session.Debt.Score, nil
	}
	return 500, nil
}

// TurnResult is the outcome of one engine turn. The caller speaks the
// segments, moves the conversation to NodeID, and commits Updates into the
// session (CommitTurn does the latter two).
type TurnResult struct {
	Segments []Segment
	NodeID   string
	Updates  *Updates
}

// Engine executes one user turn at a time against an immutable flow graph.
//
// The graph is validated at construction and never mutated; per-call state
// lives entirely in the Session, so one Engine serves any number of
// concurrent conversations. Within a single session, turns must be
// sequential (callers process one utterance at a time per connection).
type Engine struct {
	graph   *flow.Graph
	oracle  oracle.Classifier
	debts   debt.Source
	offers  OfferPolicy
	api     APIInvoker
	emitter emit.Emitter
	metrics *Metrics
	maxHops int
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebtSource sets the debt lookup backend. Default: the built-in
// static table.
func WithDebtSource(src debt.Source) Option {
	return func(e *Engine) { e.debts = src }
}

// WithOfferPolicy sets the discount availability predicate. Default:
// always available.
func WithOfferPolicy(p OfferPolicy) Option {
	return func(e *Engine) { e.offers = p }
}

// WithAPIInvoker sets the backend for API nodes. Default: SimulatedAPI.
func WithAPIInvoker(api APIInvoker) Option {
	return func(e *Engine) { e.api = api }
}

// WithEmitter sets the observability event sink. Default: NullEmitter.
func WithEmitter(em emit.Emitter) Option {
	return func(e *Engine) { e.emitter = em }
}

// WithMetrics sets the Prometheus collector. Default: none.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxHops overrides the per-turn auto-advance bound.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHops = n
		}
	}
}

// New creates an Engine for the given graph and oracle.
func New(g *flow.Graph, clf oracle.Classifier, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, &EngineError{Message: "flow graph is required", Code: "NIL_GRAPH"}
	}
	if clf == nil {
		return nil, &EngineError{Message: "oracle classifier is required", Code: "NIL_ORACLE"}
	}

	e := &Engine{
		graph:   g,
		oracle:  clf,
		debts:   debt.NewStatic(nil),
		offers:  func(*Session) bool { return true },
		api:     SimulatedAPI{},
		emitter: emit.NewNullEmitter(),
		maxHops: DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Turn processes one user utterance and returns the rendered reply, the new
// current node, and the pending session updates.
//
// Nothing is committed here: the caller applies result.Updates (or calls
// CommitTurn) only after the turn fully succeeds, so a cancelled or failed
// turn leaves the session at its pre-turn state.
//
// Recoverable problems (oracle failure, undeclared target, invalid user
// value) degrade to re-asking and never return an error; only fatal
// configuration problems do.
func (e *Engine) Turn(ctx context.Context, session *Session, utterance string) (TurnResult, error) {
	if ctx.Err() != nil {
		return TurnResult{}, ctx.Err()
	}

	turn := session.Turns() + 1
	e.emitter.Emit(emit.Event{
		CallID: session.ID,
		Turn:   turn,
		NodeID: session.CurrentNode,
		Msg:    "turn_start",
	})

	updates := &Updates{}

	nextID, err := e.resolveTurnTarget(ctx, session, utterance, turn, updates)
	if err != nil {
		e.metrics.RecordTurn(e.graph.ID, "error")
		return TurnResult{}, err
	}

	segments, haltID, err := e.advance(ctx, session, nextID, turn, updates)
	if err != nil {
		e.metrics.RecordTurn(e.graph.ID, "error")
		return TurnResult{}, err
	}

	updates.CurrentNode = strPtr(haltID)
	e.metrics.RecordTurn(e.graph.ID, "ok")
	e.emitter.Emit(emit.Event{
		CallID: session.ID,
		Turn:   turn,
		NodeID: haltID,
		Msg:    "turn_end",
	})

	return TurnResult{Segments: segments, NodeID: haltID, Updates: updates}, nil
}

// resolveTurnTarget decides which node the auto-advance loop starts from:
// the graph's start node for a fresh or corrupted session, the current node
// itself for a terminal or unresolved turn, or the branch the oracle chose.
func (e *Engine) resolveTurnTarget(ctx context.Context, session *Session, utterance string, turn int, updates *Updates) (string, error) {
	if session.CurrentNode == StartSentinel {
		return e.graph.Start, nil
	}

	current := e.graph.Node(session.CurrentNode)
	if current == nil {
		// Unknown state, likely a stale persisted session against a
		// newer flow. Fail safe by restarting the script.
		e.emitter.Emit(emit.Event{
			CallID: session.ID,
			Turn:   turn,
			NodeID: session.CurrentNode,
			Msg:    "session_reset",
		})
		return e.graph.Start, nil
	}

	if current.Terminal() {
		// Terminal states absorb further turns: repeat the closing
		// message, advance nowhere.
		return current.ID, nil
	}

	decision, err := e.classify(ctx, oracle.Request{
		Utterance: utterance,
		NodeID:    current.ID,
		Node:      current,
		History:   oracleHistory(session),
	}, session, turn)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Oracle down or raving: stay put and re-ask.
		e.metrics.RecordOracleFallback("error")
		e.emitter.Emit(emit.Event{
			CallID: session.ID,
			Turn:   turn,
			NodeID: current.ID,
			Msg:    "oracle_fallback",
			Meta:   map[string]interface{}{"error": err.Error()},
		})
		return current.ID, nil
	}

	if decision.Value != "" {
		updates.CapturedInput = strPtr(decision.Value)
	}

	target := decision.Target
	if !declaredTarget(current, target) {
		e.metrics.RecordOracleFallback("undeclared")
		e.emitter.Emit(emit.Event{
			CallID: session.ID,
			Turn:   turn,
			NodeID: current.ID,
			Msg:    "oracle_fallback",
			Meta:   map[string]interface{}{"target": target},
		})
		return current.ID, nil
	}
	return target, nil
}

// advance runs the auto-advance loop from nextID until an interactive node
// (or a dead end) halts it, accumulating rendered segments along the way.
func (e *Engine) advance(ctx context.Context, session *Session, nextID string, turn int, updates *Updates) ([]Segment, string, error) {
	var segments []Segment
	visited := make(map[string]bool)
	haltID := nextID

	for hops := 0; nextID != ""; hops++ {
		node := e.graph.Node(nextID)
		if node == nil {
			return nil, "", &EngineError{
				Message: "transition to undefined node",
				Code:    "UNKNOWN_NODE",
				NodeID:  nextID,
			}
		}
		if visited[nextID] || hops >= e.maxHops {
			return nil, "", &EngineError{
				Message: "auto-advance revisited a node within one turn",
				Code:    "TRANSITION_CYCLE",
				NodeID:  nextID,
			}
		}
		visited[nextID] = true
		haltID = nextID

		if node.Message != "" {
			segments = append(segments, Render(node.Message, Bindings(session, updates))...)
		}

		switch node.Type {
		case flow.Validation:
			nextID = e.runValidation(node, session, turn, updates)

		case flow.Action:
			var err error
			nextID, err = e.runAction(ctx, node, session, turn, updates)
			if err != nil {
				return nil, "", err
			}

		case flow.API:
			e.runAPI(ctx, node, session, turn, updates)
			nextID = node.Next

		default:
			if node.Interactive() {
				return segments, haltID, nil
			}
			nextID = node.Next
		}
	}

	return segments, haltID, nil
}

// runValidation checks the captured value against the node's rules and
// records the node's side effects on success. It never halts the turn.
func (e *Engine) runValidation(node *flow.Node, session *Session, turn int, updates *Updates) string {
	value := session.CapturedInput
	if updates.CapturedInput != nil {
		value = *updates.CapturedInput
	}

	if !ruleCheck(node.Rules, value) {
		e.metrics.RecordValidationFailure(node.ID)
		e.emitter.Emit(emit.Event{
			CallID: session.ID,
			Turn:   turn,
			NodeID: node.ID,
			Msg:    "validation_fail",
			Meta:   map[string]interface{}{"value": value},
		})
		return node.OnFail
	}

	switch node.Tag {
	case "validar_parcelas":
		n, _ := strconv.Atoi(strings.TrimSpace(value))
		updates.NumInstallments = intPtr(n)
		updates.Agreement = strPtr(AgreementInstallments)
	case "validar_nova_data":
		updates.NewDueDate = strPtr(strings.TrimSpace(value))
		updates.Agreement = strPtr(AgreementDate)
	}
	return node.OnSuccess
}

// runAction dispatches the node's built-in side effect by tag. Actions
// without a built-in effect follow next, or resolve their declared options
// through a silent oracle decision.
func (e *Engine) runAction(ctx context.Context, node *flow.Node, session *Session, turn int, updates *Updates) (string, error) {
	switch node.Tag {
	case "validar_cpf":
		cpf := session.CapturedInput
		if updates.CapturedInput != nil {
			cpf = *updates.CapturedInput
		}
		record, err := e.debts.Lookup(ctx, cpf)
		if err != nil {
			// Lookup already degraded to the default record; note it
			// and keep the conversation going.
			e.emitter.Emit(emit.Event{
				CallID: session.ID,
				Turn:   turn,
				NodeID: node.ID,
				Msg:    "debt_lookup_degraded",
				Meta:   map[string]interface{}{"error": err.Error()},
			})
		}
		updates.Debt = &record
		updates.CustomerName = strPtr(record.Name)
		return node.Next, nil

	case "calcular_desconto":
		if e.offers(updates.merged(session)) {
			updates.Agreement = strPtr(AgreementDiscount)
			return node.OnAvailable, nil
		}
		return node.OnUnavailable, nil

	case "quitar_a_vista":
		updates.Agreement = strPtr(AgreementCash)
		return node.Next, nil
	}

	if node.Next != "" {
		return node.Next, nil
	}

	choices := node.Choices()
	if len(choices) == 0 {
		return "", nil
	}

	// Machine-initiated decision: the flow author delegated this branch to
	// the oracle with no user utterance to go on.
	decision, err := e.classify(ctx, oracle.Request{
		NodeID:  node.ID,
		Node:    node,
		History: oracleHistory(session),
	}, session, turn)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.metrics.RecordOracleFallback("error")
		return choices[0].Target, nil
	}
	if decision.Target == "" || decision.Target == node.ID || !declaredTarget(node, decision.Target) {
		// No-progress answer; force the first declared option so the
		// turn cannot stall on a transparent node.
		e.metrics.RecordOracleFallback("no_progress")
		return choices[0].Target, nil
	}
	return decision.Target, nil
}

// runAPI performs the node's external call, degrading to no score update
// on failure.
func (e *Engine) runAPI(ctx context.Context, node *flow.Node, session *Session, turn int, updates *Updates) {
	score, err := e.api.Invoke(ctx, node, updates.merged(session))
	if err != nil {
		e.emitter.Emit(emit.Event{
			CallID: session.ID,
			Turn:   turn,
			NodeID: node.ID,
			Msg:    "api_call_failed",
			Meta:   map[string]interface{}{"error": err.Error(), "endpoint": node.Endpoint},
		})
		return
	}
	updates.Score = intPtr(score)
}

// classify calls the oracle once, recording latency.
func (e *Engine) classify(ctx context.Context, req oracle.Request, session *Session, turn int) (oracle.Decision, error) {
	start := time.Now()
	decision, err := e.oracle.Classify(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
	}
	nodeType := ""
	if req.Node != nil {
		nodeType = string(req.Node.Type)
	}
	e.metrics.RecordOracleLatency(nodeType, time.Since(start), status)
	return decision, err
}

// ruleCheck applies a validation node's rules to the raw captured value.
// Numeric bounds require an integer in range; date rules only require that
// a value was captured at all, the date itself having been normalized by
// the oracle's extraction.
func ruleCheck(rules *flow.Rules, value string) bool {
	if rules == nil {
		return true
	}
	value = strings.TrimSpace(value)

	if rules.Min != nil || rules.Max != nil {
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		if rules.Min != nil && n < *rules.Min {
			return false
		}
		if rules.Max != nil && n > *rules.Max {
			return false
		}
	}
	if rules.DateRule() && value == "" {
		return false
	}
	return true
}

// declaredTarget reports whether target is one of node's declared
// successors or the node itself (the "no decision" answer).
func declaredTarget(node *flow.Node, target string) bool {
	if target == "" {
		return false
	}
	if target == node.ID {
		return true
	}
	for _, t := range node.Targets() {
		if t == target {
			return true
		}
	}
	return false
}

// oracleHistory converts session history into oracle messages. Windowing
// happens inside the oracle package.
func oracleHistory(session *Session) []oracle.Message {
	msgs := make([]oracle.Message, 0, len(session.History))
	for _, entry := range session.History {
		msgs = append(msgs, oracle.Message{Role: entry.Role, Content: entry.Text})
	}
	return msgs
}

// CommitTurn applies a successful turn to the session: updates are merged
// and the utterance/reply pair appended to history. Call it exactly once
// per successful Turn.
func CommitTurn(session *Session, utterance string, result TurnResult) {
	var tool *ToolRecord
	if result.Updates != nil && result.Updates.CapturedInput != nil {
		tool = &ToolRecord{
			NodeID: session.CurrentNode,
			Target: result.NodeID,
			Value:  *result.Updates.CapturedInput,
		}
	}

	result.Updates.Apply(session)
	session.History = append(session.History,
		Entry{Role: "user", Text: utterance, Tool: tool},
		Entry{Role: "assistant", Text: SegmentText(result.Segments)},
	)
}

// String renders a result for logs and consoles.
func (r TurnResult) String() string {
	return fmt.Sprintf("node=%s %q", r.NodeID, SegmentText(r.Segments))
}
