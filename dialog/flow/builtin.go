package flow

import (
	_ "embed"
	"fmt"
)

//go:embed flows/negotiation.json
var negotiationJSON []byte

//go:embed flows/negotiation_simple.json
var negotiationSimpleJSON []byte

// Negotiation returns the full debt-negotiation flow: CPF capture, customer
// lookup, an optional credit-score API consult, and the negotiation branches
// (date change, installments, discount, cash settlement).
func Negotiation() *Graph {
	return mustParse(negotiationJSON)
}

// NegotiationSimple returns the shorter negotiation script that skips
// identification and starts straight at the greeting, for callers whose
// transport already knows who the customer is.
func NegotiationSimple() *Graph {
	return mustParse(negotiationSimpleJSON)
}

// mustParse is for the embedded assets only; they are covered by tests, so a
// failure here is a broken build, not a runtime condition.
func mustParse(data []byte) *Graph {
	g, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("flow: embedded flow invalid: %v", err))
	}
	return g
}
