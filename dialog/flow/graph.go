package flow

import (
	"encoding/json"
	"fmt"
)

// Graph is an immutable conversation flow: a start node plus an id-keyed node
// set. Construct one with Parse (or a built-in constructor) at process start
// and share it by reference; the engine never mutates it.
type Graph struct {
	ID    string           `json:"flow_id"`
	Start string           `json:"start_node"`
	Nodes map[string]*Node `json:"nodes"`
}

// GraphError reports a structural problem found while loading a flow.
type GraphError struct {
	Message string
	Code    string
	NodeID  string
}

func (e *GraphError) Error() string {
	if e.NodeID != "" {
		return e.Code + ": node " + e.NodeID + ": " + e.Message
	}
	return e.Code + ": " + e.Message
}

// Parse decodes a flow document and validates it. A flow that parses but does
// not validate is rejected: serving turns against a graph with dangling
// successors or transparent cycles would fail mid-conversation instead of at
// load time.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("flow: decode: %w", err)
	}

	for id, n := range g.Nodes {
		n.ID = id
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Node looks up a node by id, returning nil for unknown ids.
func (g *Graph) Node(id string) *Node {
	return g.Nodes[id]
}

// Validate checks the structural invariants of the graph:
//
//   - a declared, existing start node
//   - every node has a recognized type
//   - every referenced successor id exists
//   - interactive nodes that gate on choices actually declare them
//   - no cycle consisting solely of transparent nodes (such a cycle would
//     spin the auto-advance loop forever on a single turn)
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return &GraphError{Code: "EMPTY_FLOW", Message: "flow has no nodes"}
	}
	if g.Start == "" {
		return &GraphError{Code: "NO_START", Message: "start_node is not set"}
	}
	if _, ok := g.Nodes[g.Start]; !ok {
		return &GraphError{Code: "NO_START", Message: "start_node " + g.Start + " does not exist"}
	}

	for id, n := range g.Nodes {
		if !nodeTypes[n.Type] {
			return &GraphError{Code: "UNKNOWN_TYPE", NodeID: id, Message: "unrecognized type " + string(n.Type)}
		}

		for _, target := range n.Targets() {
			if _, ok := g.Nodes[target]; !ok {
				return &GraphError{Code: "DANGLING_TARGET", NodeID: id, Message: "successor " + target + " does not exist"}
			}
		}

		switch n.Type {
		case Intent:
			if len(n.Intents) == 0 {
				return &GraphError{Code: "NO_CHOICES", NodeID: id, Message: "INTENT node declares no intents"}
			}
		case Decision, Confirmation:
			if len(n.Options) == 0 {
				return &GraphError{Code: "NO_CHOICES", NodeID: id, Message: string(n.Type) + " node declares no options"}
			}
		case Validation:
			if n.OnSuccess == "" || n.OnFail == "" {
				return &GraphError{Code: "NO_BRANCH", NodeID: id, Message: "VALIDATION node needs on_success and on_fail"}
			}
		}
	}

	if id := g.transparentCycle(); id != "" {
		return &GraphError{Code: "TRANSPARENT_CYCLE", NodeID: id, Message: "cycle of non-interactive nodes"}
	}

	return nil
}

// transparentCycle looks for a cycle reachable through transparent nodes only,
// following every edge the auto-advance loop could take. Returns the id of a
// node on the cycle, or "".
func (g *Graph) transparentCycle() string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.Nodes))

	var visit func(id string) string
	visit = func(id string) string {
		n, ok := g.Nodes[id]
		if !ok || n.Interactive() {
			return ""
		}
		switch state[id] {
		case visiting:
			return id
		case done:
			return ""
		}
		state[id] = visiting
		for _, target := range n.Targets() {
			if hit := visit(target); hit != "" {
				return hit
			}
		}
		state[id] = done
		return ""
	}

	for id := range g.Nodes {
		if hit := visit(id); hit != "" {
			return hit
		}
	}
	return ""
}
