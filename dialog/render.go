package dialog

import "strings"

// SegmentKind distinguishes literal template text from interpolated values.
type SegmentKind string

const (
	// SegmentStatic is template text that never changes for a given node.
	// Static segments are safe to pre-synthesize and cache.
	SegmentStatic SegmentKind = "static"
	// SegmentDynamic is a value substituted at render time (amounts in
	// words, customer name). Dynamic segments must be synthesized live.
	SegmentDynamic SegmentKind = "dynamic"
)

// Segment is one piece of a rendered node message. A message template is
// rendered into an ordered sequence of segments so a TTS layer can serve
// the static parts from cache and synthesize only the dynamic parts.
type Segment struct {
	Kind SegmentKind `json:"type"`
	Text string      `json:"text"`
}

// Render splits template into segments around {{name}} markers.
//
// Text outside markers becomes static segments with spacing preserved.
// Each marker becomes one dynamic segment carrying bindings[name]; when the
// name is unbound the marker text is kept verbatim, so a misconfigured
// template surfaces visibly instead of crashing a live call.
//
// Render is pure: no side effects, safe to call repeatedly with different
// bindings. A template without markers yields a single static segment.
func Render(template string, bindings map[string]string) []Segment {
	if template == "" {
		return nil
	}

	var segments []Segment
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open:], "}}")
		if close < 0 {
			break
		}
		close += open

		if open > 0 {
			segments = append(segments, Segment{Kind: SegmentStatic, Text: rest[:open]})
		}

		marker := rest[open : close+2]
		name := rest[open+2 : close]
		text, ok := bindings[name]
		if !ok {
			text = marker
		}
		segments = append(segments, Segment{Kind: SegmentDynamic, Text: text})

		rest = rest[close+2:]
	}
	if rest != "" {
		segments = append(segments, Segment{Kind: SegmentStatic, Text: rest})
	}
	return segments
}

// SegmentText concatenates segment texts in order, reconstructing the
// spoken sentence.
func SegmentText(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
