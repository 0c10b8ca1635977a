package debt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTP is a Source backed by the collections REST API
// (GET {base}/debts/{cpf} returning a JSON debt record).
//
// Failures never surface to the caller as hard errors during a live call; use
// Lookup's error only for logging and fall back to Default(), which is what
// the dialog engine does.
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP creates an HTTP debt source for the given base URL, e.g.
// "http://localhost:8001". A nil client gets a 5 second timeout default;
// lookups happen mid-conversation, so they must not hang a turn.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTP{base: base, client: client}
}

// Lookup implements Source. Any transport or decode failure returns the
// default record alongside the error, so callers can log and keep going.
func (h *HTTP) Lookup(ctx context.Context, cpf string) (Record, error) {
	u := h.base + "/debts/" + url.PathEscape(NormalizeCPF(cpf))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Default(), fmt.Errorf("debt: build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Default(), fmt.Errorf("debt: lookup %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return Default(), nil
	}
	if resp.StatusCode != http.StatusOK {
		return Default(), fmt.Errorf("debt: lookup %s: status %d", u, resp.StatusCode)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Default(), fmt.Errorf("debt: decode response: %w", err)
	}
	return rec, nil
}
