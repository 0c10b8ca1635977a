package dialog

import "github.com/dialtree/dialtree-go/dialog/flow"

// PossibleUtterances enumerates, for every branch declared on the given
// node, the reply the engine would speak if the next turn took that branch.
// It exists so a TTS layer can pre-synthesize likely replies while the
// user is still talking.
//
// The walk mirrors the engine's auto-advance but is a static best-effort
// prediction: no oracle calls, no session mutations, VALIDATION nodes
// assume success, ACTION nodes assume the offer is available, and bindings
// come from the committed session only. Because it is read-only it may run
// concurrently with the engine's next turn for the same session.
//
// It never fails; unpredictable or empty branches are simply omitted.
func (e *Engine) PossibleUtterances(nodeID string, session *Session) [][]Segment {
	node := e.graph.Node(nodeID)
	if node == nil {
		return nil
	}

	var targets []string
	if choices := node.Choices(); len(choices) > 0 {
		for _, c := range choices {
			targets = append(targets, c.Target)
		}
	} else if node.Next != "" {
		targets = []string{node.Next}
	}

	bindings := Bindings(session, nil)

	var paths [][]Segment
	for _, target := range targets {
		if segments := e.walkBranch(target, bindings); len(segments) > 0 {
			paths = append(paths, segments)
		}
	}

	e.metrics.RecordPrecachePaths(e.graph.ID, len(paths))
	return paths
}

// walkBranch collects rendered segments from target down to the first
// interactive node or dead end.
func (e *Engine) walkBranch(target string, bindings map[string]string) []Segment {
	var segments []Segment
	visited := make(map[string]bool)

	for current := target; current != "" && !visited[current]; {
		visited[current] = true
		node := e.graph.Node(current)
		if node == nil {
			break
		}

		if node.Message != "" {
			segments = append(segments, Render(node.Message, bindings)...)
		}

		if node.Interactive() {
			break
		}

		switch {
		case node.Type == flow.Validation:
			current = node.OnSuccess
		case node.Type == flow.Action && node.OnAvailable != "":
			current = node.OnAvailable
		default:
			current = node.Next
		}
	}
	return segments
}
