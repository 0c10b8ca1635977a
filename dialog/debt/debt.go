// Package debt provides the customer debt lookup the negotiation flow runs on.
//
// The engine consumes a Source: given a customer identifier (a CPF captured by
// the classifier) it returns the open debt record. Lookups never abort a turn:
// a miss, or an unreachable backend, degrades to a documented default record so
// the conversation can continue with generic values.
package debt

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one customer's open debt.
type Record struct {
	// Name is the customer's registered name.
	Name string `json:"nome"`

	// Amount is the outstanding principal.
	Amount decimal.Decimal `json:"valor"`

	// Creditor is the company the debt is owed to.
	Creditor string `json:"empresa"`

	// Score is the customer's credit score; zero when never consulted.
	Score int `json:"score,omitempty"`

	// Status is the collection status reported by the backend.
	Status string `json:"status,omitempty"`
}

// Source resolves a customer identifier to a debt record.
//
// Implementations must return Default() rather than an error when the customer
// is unknown; errors are reserved for infrastructure failures, and even those
// are swallowed by the engine in favor of the default record.
type Source interface {
	Lookup(ctx context.Context, cpf string) (Record, error)
}

// Default is the record used when a customer cannot be identified. The
// conversation proceeds with a generic greeting and a small placeholder debt.
func Default() Record {
	return Record{
		Name:     "Cliente",
		Amount:   decimal.NewFromInt(100),
		Creditor: "nossa empresa parceira",
	}
}

// NormalizeCPF strips everything but digits, matching how identifiers arrive
// from speech ("um dois três..." transcribed with dots and dashes).
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Static is an in-memory Source backed by a fixed table. Used in development
// and tests in place of the collections backend.
type Static struct {
	records map[string]Record
}

// NewStatic creates a Static source with the given records keyed by
// normalized CPF. Pass nil to get the built-in sample table.
func NewStatic(records map[string]Record) *Static {
	if records == nil {
		records = SampleRecords()
	}
	return &Static{records: records}
}

// SampleRecords returns the development fixture table.
func SampleRecords() map[string]Record {
	return map[string]Record{
		"12345678901": {
			Name:     "João Silva",
			Amount:   decimal.RequireFromString("1250.50"),
			Creditor: "Banco Alpha",
			Score:    750,
			Status:   "em_atraso",
		},
		"98765432100": {
			Name:     "Maria Oliveira",
			Amount:   decimal.RequireFromString("450.00"),
			Creditor: "Loja Beta",
			Score:    420,
			Status:   "em_atraso",
		},
	}
}

// Lookup implements Source. Unknown customers get the default record.
func (s *Static) Lookup(_ context.Context, cpf string) (Record, error) {
	if rec, ok := s.records[NormalizeCPF(cpf)]; ok {
		return rec, nil
	}
	return Default(), nil
}
