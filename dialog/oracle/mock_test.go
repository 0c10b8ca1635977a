package oracle

import (
	"context"
	"errors"
	"testing"
)

func TestMock(t *testing.T) {
	t.Run("scripted decisions in order", func(t *testing.T) {
		m := &Mock{Decisions: []Decision{
			{Target: "a"},
			{Target: "b"},
		}}

		d, err := m.Classify(context.Background(), Request{Utterance: "one"})
		if err != nil || d.Target != "a" {
			t.Fatalf("first = %v, %v", d, err)
		}
		d, _ = m.Classify(context.Background(), Request{Utterance: "two"})
		if d.Target != "b" {
			t.Fatalf("second = %v", d)
		}
		// exhausted scripts repeat the last decision
		d, _ = m.Classify(context.Background(), Request{Utterance: "three"})
		if d.Target != "b" {
			t.Fatalf("repeat = %v", d)
		}
		if m.CallCount() != 3 {
			t.Errorf("CallCount = %d, want 3", m.CallCount())
		}
		if m.Requests[0].Utterance != "one" {
			t.Errorf("requests not recorded: %+v", m.Requests)
		}
	})

	t.Run("error short-circuits", func(t *testing.T) {
		wantErr := errors.New("boom")
		m := &Mock{Err: wantErr}
		if _, err := m.Classify(context.Background(), Request{}); !errors.Is(err, wantErr) {
			t.Fatalf("err = %v, want %v", err, wantErr)
		}
	})

	t.Run("reset clears state", func(t *testing.T) {
		m := &Mock{Decisions: []Decision{{Target: "a"}}}
		m.Classify(context.Background(), Request{})
		m.Reset()
		if m.CallCount() != 0 || len(m.Requests) != 0 {
			t.Errorf("Reset did not clear call state")
		}
	})
}
