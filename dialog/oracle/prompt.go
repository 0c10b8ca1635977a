package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dialtree/dialtree-go/dialog/flow"
)

// HistoryWindow is how many trailing history entries the prompt includes.
// Keeping the window small bounds request size and keeps the classifier
// focused on the current exchange.
const HistoryWindow = 4

// BuildSystemPrompt renders the instruction block for one classification.
// The shape depends on the node type: choice nodes list their labels, INPUT
// nodes ask for value extraction.
func BuildSystemPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Você é um assistente de voz para cobrança. Analise a fala do usuário para o nó '%s' (%s).\n",
		req.NodeID, req.Node.Type)

	if req.Node.Description != "" {
		fmt.Fprintf(&sb, "Contexto do nó: %s\n", req.Node.Description)
	}

	switch req.Node.Type {
	case flow.Intent:
		fmt.Fprintf(&sb, "Determine a intenção do usuário entre as opções: %v.\n", req.Node.Intents.Labels())
		if len(req.Node.Examples) > 0 {
			fmt.Fprintf(&sb, "Exemplos de referência: %v\n", req.Node.Examples)
		}
		sb.WriteString(`Responda APENAS um JSON: {"choice": "nome_da_opcao"}`)

	case flow.Decision, flow.Confirmation, flow.Action:
		fmt.Fprintf(&sb, "Escolha a melhor opção entre: %v.\n", req.Node.Options.Labels())
		sb.WriteString(`Responda APENAS um JSON: {"choice": "nome_da_opcao"}`)

	case flow.Input:
		sb.WriteString("Extraia o valor solicitado (data, número de parcelas, CPF, etc).\n")
		sb.WriteString(`Responda APENAS um JSON: {"value": "valor_extraido"}`)

	default:
		sb.WriteString(`Responda APENAS um JSON: {"choice": "nome_da_opcao"}`)
	}

	return sb.String()
}

// Messages assembles the chat transcript for a request: the bounded history
// window followed by the utterance as the final user message.
func Messages(req Request) []Message {
	history := req.History
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		role := RoleUser
		if m.Role == RoleAssistant || m.Role == "ai" {
			role = RoleAssistant
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content})
	}
	return append(msgs, Message{Role: RoleUser, Content: req.Utterance})
}

// reply is the JSON document every provider is instructed to return.
type reply struct {
	Choice    string `json:"choice"`
	Value     string `json:"value"`
	Reasoning string `json:"reasoning"`
}

// ParseReply turns a provider's raw text answer into a Decision, resolving
// the chosen label against the node's declared branches.
//
// Anything unparseable, and any label the node does not declare, resolves to
// Stay(req): the engine re-asks rather than wandering off the graph.
func ParseReply(req Request, raw string) Decision {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Stay(req)
	}

	if req.Node.Type == flow.Input {
		// INPUT nodes have a single exit; the captured value is the point.
		return Decision{Target: req.Node.Next, Value: r.Value, Reasoning: r.Reasoning}
	}

	target := req.Node.Choices().Target(r.Choice)
	if target == "" {
		return Stay(req)
	}
	return Decision{Target: target, Value: r.Value, Reasoning: r.Reasoning}
}
