package dialog

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	bindings := map[string]string{
		"nome":         "João Silva",
		"valor_divida": "mil duzentos e cinquenta reais",
	}

	tests := []struct {
		name     string
		template string
		want     []Segment
	}{
		{
			name:     "no markers is one static segment",
			template: "Olá! Como posso ajudar?",
			want:     []Segment{{Kind: SegmentStatic, Text: "Olá! Como posso ajudar?"}},
		},
		{
			name:     "marker in the middle",
			template: "Localizei seu cadastro, {{nome}}. Como posso ajudar?",
			want: []Segment{
				{Kind: SegmentStatic, Text: "Localizei seu cadastro, "},
				{Kind: SegmentDynamic, Text: "João Silva"},
				{Kind: SegmentStatic, Text: ". Como posso ajudar?"},
			},
		},
		{
			name:     "marker at start",
			template: "{{nome}}, tudo bem?",
			want: []Segment{
				{Kind: SegmentDynamic, Text: "João Silva"},
				{Kind: SegmentStatic, Text: ", tudo bem?"},
			},
		},
		{
			name:     "marker at end",
			template: "O valor é {{valor_divida}}",
			want: []Segment{
				{Kind: SegmentStatic, Text: "O valor é "},
				{Kind: SegmentDynamic, Text: "mil duzentos e cinquenta reais"},
			},
		},
		{
			name:     "unbound marker stays verbatim",
			template: "Valor: {{valor_inexistente}}.",
			want: []Segment{
				{Kind: SegmentStatic, Text: "Valor: "},
				{Kind: SegmentDynamic, Text: "{{valor_inexistente}}"},
				{Kind: SegmentStatic, Text: "."},
			},
		},
		{
			name:     "adjacent markers",
			template: "{{nome}}{{valor_divida}}",
			want: []Segment{
				{Kind: SegmentDynamic, Text: "João Silva"},
				{Kind: SegmentDynamic, Text: "mil duzentos e cinquenta reais"},
			},
		},
		{
			name:     "empty template",
			template: "",
			want:     nil,
		},
		{
			name:     "unterminated marker is static",
			template: "Valor: {{aberto",
			want:     []Segment{{Kind: SegmentStatic, Text: "Valor: {{aberto"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.template, bindings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Render() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender_ConcatenationProperty(t *testing.T) {
	// joining the segments reproduces the template with every resolvable
	// marker substituted
	bindings := map[string]string{"a": "X", "b": "Y"}
	template := "um {{a}} dois {{b}} três {{c}} fim"

	got := SegmentText(Render(template, bindings))
	want := "um X dois Y três {{c}} fim"
	if got != want {
		t.Errorf("concatenation = %q, want %q", got, want)
	}
}

func TestRender_Pure(t *testing.T) {
	template := "Olá {{nome}}"
	first := Render(template, map[string]string{"nome": "Ana"})
	second := Render(template, map[string]string{"nome": "Bia"})

	if first[1].Text != "Ana" || second[1].Text != "Bia" {
		t.Errorf("renders interfered: %v / %v", first, second)
	}
}
