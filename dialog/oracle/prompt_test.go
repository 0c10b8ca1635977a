package oracle

import (
	"strings"
	"testing"

	"github.com/dialtree/dialtree-go/dialog/flow"
)

func intentNode() *flow.Node {
	return &flow.Node{
		ID:   "identificar_intencao",
		Type: flow.Intent,
		Intents: flow.ChoiceList{
			{Label: "negociar_divida", Target: "escolher_tipo_negociacao"},
			{Label: "consultar_valor", Target: "consultar_valor_divida"},
		},
		Examples: []string{"quero negociar"},
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("intent node lists intents", func(t *testing.T) {
		req := Request{NodeID: "identificar_intencao", Node: intentNode()}
		prompt := BuildSystemPrompt(req)

		for _, want := range []string{"identificar_intencao", "negociar_divida", "consultar_valor", `"choice"`} {
			if !strings.Contains(prompt, want) {
				t.Errorf("prompt missing %q:\n%s", want, prompt)
			}
		}
	})

	t.Run("input node asks for value", func(t *testing.T) {
		req := Request{
			NodeID: "informar_parcelas",
			Node:   &flow.Node{ID: "informar_parcelas", Type: flow.Input, Next: "validar_parcelas"},
		}
		prompt := BuildSystemPrompt(req)
		if !strings.Contains(prompt, `"value"`) {
			t.Errorf("INPUT prompt should request a value:\n%s", prompt)
		}
	})

	t.Run("decision node lists options", func(t *testing.T) {
		req := Request{
			NodeID: "confirmar_acordo",
			Node: &flow.Node{
				ID:   "confirmar_acordo",
				Type: flow.Confirmation,
				Options: flow.ChoiceList{
					{Label: "confirmar", Target: "final_sucesso"},
					{Label: "cancelar", Target: "final_falha"},
				},
			},
		}
		prompt := BuildSystemPrompt(req)
		if !strings.Contains(prompt, "confirmar") || !strings.Contains(prompt, "cancelar") {
			t.Errorf("prompt missing options:\n%s", prompt)
		}
	})
}

func TestMessages_Window(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "h1"},
		{Role: RoleAssistant, Content: "h2"},
		{Role: RoleUser, Content: "h3"},
		{Role: "ai", Content: "h4"},
		{Role: RoleUser, Content: "h5"},
		{Role: RoleAssistant, Content: "h6"},
	}
	req := Request{Utterance: "quero parcelar", History: history}

	msgs := Messages(req)
	if len(msgs) != HistoryWindow+1 {
		t.Fatalf("len = %d, want %d", len(msgs), HistoryWindow+1)
	}
	if msgs[0].Content != "h3" {
		t.Errorf("window should start at h3, got %q", msgs[0].Content)
	}
	if msgs[1].Role != RoleAssistant {
		t.Errorf("legacy 'ai' role should normalize to assistant, got %q", msgs[1].Role)
	}
	last := msgs[len(msgs)-1]
	if last.Role != RoleUser || last.Content != "quero parcelar" {
		t.Errorf("utterance should be the final user message, got %+v", last)
	}
}

func TestParseReply(t *testing.T) {
	req := Request{NodeID: "identificar_intencao", Node: intentNode()}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain choice", `{"choice": "negociar_divida"}`, "escolher_tipo_negociacao"},
		{"fenced choice", "```json\n{\"choice\": \"consultar_valor\"}\n```", "consultar_valor_divida"},
		{"undeclared choice stays", `{"choice": "cancelar_tudo"}`, "identificar_intencao"},
		{"garbage stays", `not json at all`, "identificar_intencao"},
		{"empty stays", ``, "identificar_intencao"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseReply(req, tt.raw)
			if d.Target != tt.want {
				t.Errorf("Target = %q, want %q", d.Target, tt.want)
			}
		})
	}

	t.Run("input node captures value", func(t *testing.T) {
		inputReq := Request{
			NodeID: "informar_parcelas",
			Node:   &flow.Node{ID: "informar_parcelas", Type: flow.Input, Next: "validar_parcelas"},
		}
		d := ParseReply(inputReq, `{"value": "5"}`)
		if d.Target != "validar_parcelas" {
			t.Errorf("Target = %q, want validar_parcelas", d.Target)
		}
		if d.Value != "5" {
			t.Errorf("Value = %q, want 5", d.Value)
		}
	})
}
