package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dialtree/dialtree-go/dialog/flow"
	"github.com/dialtree/dialtree-go/dialog/oracle"
)

type fakeClient struct {
	replies []string
	errs    []error
	calls   int
	system  string
}

func (f *fakeClient) complete(_ context.Context, system string, _ []oracle.Message) (string, error) {
	i := f.calls
	f.calls++
	f.system = system
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var reply string
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return reply, err
}

func testRequest() oracle.Request {
	return oracle.Request{
		NodeID:    "identificar_intencao",
		Utterance: "quero negociar minha dívida",
		Node: &flow.Node{
			ID:   "identificar_intencao",
			Type: flow.Intent,
			Intents: flow.ChoiceList{
				{Label: "negociar_divida", Target: "escolher_tipo_negociacao"},
			},
		},
	}
}

func TestClassify(t *testing.T) {
	t.Run("parses choice reply", func(t *testing.T) {
		fake := &fakeClient{replies: []string{`{"choice": "negociar_divida"}`}}
		clf := &Classifier{modelName: "gpt-4o-mini", client: fake}

		d, err := clf.Classify(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if d.Target != "escolher_tipo_negociacao" {
			t.Errorf("Target = %q, want escolher_tipo_negociacao", d.Target)
		}
		if fake.system == "" {
			t.Error("system prompt was not forwarded")
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		fake := &fakeClient{
			errs:    []error{errors.New("429 rate limit"), nil},
			replies: []string{"", `{"choice": "negociar_divida"}`},
		}
		clf := &Classifier{
			modelName:  "gpt-4o-mini",
			client:     fake,
			maxRetries: 2,
			retryDelay: time.Millisecond,
		}

		d, err := clf.Classify(context.Background(), testRequest())
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if fake.calls != 2 {
			t.Errorf("calls = %d, want 2", fake.calls)
		}
		if d.Target != "escolher_tipo_negociacao" {
			t.Errorf("Target = %q", d.Target)
		}
	})

	t.Run("non-transient error fails fast", func(t *testing.T) {
		fake := &fakeClient{errs: []error{errors.New("401 invalid api key")}}
		clf := &Classifier{
			modelName:  "gpt-4o-mini",
			client:     fake,
			maxRetries: 2,
			retryDelay: time.Millisecond,
		}

		if _, err := clf.Classify(context.Background(), testRequest()); err == nil {
			t.Fatal("expected error")
		}
		if fake.calls != 1 {
			t.Errorf("calls = %d, want 1", fake.calls)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		clf := &Classifier{modelName: "gpt-4o-mini", client: &fakeClient{}}
		if _, err := clf.Classify(ctx, testRequest()); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("429 too many requests"), true},
		{errors.New("connection reset by peer"), true},
		{errors.New("502 bad gateway"), true},
		{errors.New("invalid request"), false},
		{context.Canceled, false},
	}
	for _, tt := range tests {
		if got := isTransient(tt.err); got != tt.want {
			t.Errorf("isTransient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	clf := New("test-key", "")
	if clf.modelName != "gpt-4o-mini" {
		t.Errorf("default model = %q", clf.modelName)
	}
}
