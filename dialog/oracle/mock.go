package oracle

import (
	"context"
	"sync"
)

// Mock is a scripted Classifier for tests.
//
// It returns configured decisions in order, repeating the last one when the
// script runs out, and records every request it sees. Error injection makes
// it easy to exercise the engine's stay-on-node degradation.
//
// Example:
//
//	mock := &oracle.Mock{
//	    Decisions: []oracle.Decision{
//	        {Target: "escolher_tipo_negociacao"},
//	        {Target: "validar_parcelas", Value: "5"},
//	    },
//	}
type Mock struct {
	// Decisions is the scripted sequence of answers.
	Decisions []Decision

	// Err, if set, is returned by every Classify call.
	Err error

	// Requests journals every Classify invocation.
	Requests []Request

	mu   sync.Mutex
	next int
}

// Classify implements Classifier.
func (m *Mock) Classify(ctx context.Context, req Request) (Decision, error) {
	if ctx.Err() != nil {
		return Decision{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return Decision{}, m.Err
	}
	if len(m.Decisions) == 0 {
		return Stay(req), nil
	}

	idx := m.next
	if idx >= len(m.Decisions) {
		idx = len(m.Decisions) - 1
	} else {
		m.next++
	}
	return m.Decisions[idx], nil
}

// Reset clears the journal and rewinds the script.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = nil
	m.next = 0
}

// CallCount returns how many times Classify was invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
