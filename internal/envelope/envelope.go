// Package envelope interprets the agent's optional machine-authored JSON
// envelope. The agent usually emits free text, but when its formatter tool
// runs, the final buffer is (or embeds) a JSON object carrying explicit
// choices. Parsing is layered: pure envelope, then embedded flat object,
// then embedded object with a nested choices array. A miss at every layer
// means the buffer is plain prose and the heuristic extractors take over.
package envelope

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Choice is one explicit option supplied by the agent.
type Choice struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Response is the structured envelope the agent's formatter emits.
type Response struct {
	Text             string   `json:"text"`
	HasChoices       bool     `json:"has_choices"`
	ChoiceType       string   `json:"choice_type,omitempty"`
	Choices          []Choice `json:"choices,omitempty"`
	AllowFreeInput   bool     `json:"allow_free_input,omitempty"`
	InputHint        string   `json:"input_hint,omitempty"`
	InputPlaceholder string   `json:"input_placeholder,omitempty"`
}

// Parse tries each envelope strategy in order and returns the first hit.
// ok is false when the buffer holds no recoverable envelope; callers then
// treat the raw buffer as canonical prose.
func Parse(buf string) (*Response, bool) {
	if r := parsePure(buf); r != nil {
		return r, true
	}
	if r := parseEmbeddedSimple(buf); r != nil {
		return r, true
	}
	if r := parseEmbeddedComplex(buf); r != nil {
		return r, true
	}
	return nil, false
}

// decode unmarshals candidate JSON and verifies the required fields are
// actually present, not merely zero-valued.
func decode(candidate string, requireHasChoices bool) *Response {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil
	}
	if _, ok := fields["text"]; !ok {
		return nil
	}
	if requireHasChoices {
		raw, ok := fields["has_choices"]
		if !ok {
			return nil
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil
		}
	}

	var r Response
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return nil
	}
	return &r
}

// parsePure accepts a buffer that is itself a single envelope object.
func parsePure(buf string) *Response {
	trimmed := strings.TrimSpace(buf)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return nil
	}
	return decode(trimmed, true)
}

// flatEnvelopeRe matches the smallest flat object containing "text" and a
// boolean "has_choices", in either field order.
var flatEnvelopeRe = regexp.MustCompile(
	`\{[^{}]*?"text"\s*:[^{}]*?"has_choices"\s*:\s*(?:true|false)[^{}]*?\}` +
		`|\{[^{}]*?"has_choices"\s*:\s*(?:true|false)[^{}]*?"text"\s*:[^{}]*?\}`)

// parseEmbeddedSimple scans prose for flat envelope objects and accepts
// the first candidate that parses with both required fields.
func parseEmbeddedSimple(buf string) *Response {
	for _, candidate := range flatEnvelopeRe.FindAllString(buf, -1) {
		if r := decode(candidate, true); r != nil {
			return r
		}
	}
	return nil
}

// parseEmbeddedComplex scans for an object that carries "text" and a
// nested "choices" array. Objects like these span braces, so candidates
// are cut by balanced-brace scanning, with literal newlines inside string
// values normalized before parsing.
func parseEmbeddedComplex(buf string) *Response {
	for start := 0; ; {
		idx := strings.Index(buf[start:], "{")
		if idx < 0 {
			return nil
		}
		idx += start

		candidate, end := balancedObject(buf, idx)
		if candidate == "" {
			start = idx + 1
			continue
		}
		if strings.Contains(candidate, `"text"`) && strings.Contains(candidate, `"choices"`) {
			if r := decode(normalizeNewlines(candidate), false); r != nil {
				return r
			}
		}
		start = end
	}
}

// balancedObject returns the substring from opening brace at idx to its
// matching close, respecting JSON string syntax. Returns "" when the
// object never closes (truncated output).
func balancedObject(s string, idx int) (string, int) {
	depth := 0
	inString := false
	escaped := false
	for i := idx; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[idx : i+1], i + 1
			}
		}
	}
	return "", len(s)
}

// normalizeNewlines escapes literal newlines that appear inside string
// values, which the agent produces when it pretty-prints multi-line text
// fields by hand.
func normalizeNewlines(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate))
	inString := false
	escaped := false
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			case c == '\n':
				b.WriteString(`\n`)
				continue
			case c == '\r':
				continue
			}
		} else if c == '"' {
			inString = true
		}
		b.WriteByte(c)
	}
	return b.String()
}
