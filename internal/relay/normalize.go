package relay

import "encoding/json"

// Reply is an upstream response reduced to the fields route handlers care
// about. Upstream shapes vary by workflow; normalization lives here so a new
// shape is handled in exactly one place.
type Reply struct {
	Text     string
	Blocks   []any
	Analysis map[string]any
}

// Normalize probes an upstream response for a usable reply. An n8n-style
// [{"output":"<json-string>"}] envelope is unwrapped first (output parsed as
// JSON, then re-probed); after that, keys are tried in priority order:
// reply, text, message, analysis.summary.
func Normalize(raw any) Reply {
	raw = unwrap(raw, 3)

	m, ok := raw.(map[string]any)
	if !ok {
		return Reply{}
	}

	out := Reply{}
	if b, ok := m["blocks"].([]any); ok {
		out.Blocks = b
	}
	if a, ok := m["analysis"].(map[string]any); ok {
		out.Analysis = a
	}

	for _, key := range []string{"reply", "text", "message"} {
		if s, ok := m[key].(string); ok && s != "" {
			out.Text = s
			return out
		}
	}
	if out.Analysis != nil {
		if s, ok := out.Analysis["summary"].(string); ok {
			out.Text = s
		}
	}
	return out
}

// unwrap peels vendor envelopes: a non-empty array is replaced by its first
// element, and an "output" string field is parsed as embedded JSON. depth
// bounds pathological nesting.
func unwrap(raw any, depth int) any {
	for ; depth > 0; depth-- {
		switch v := raw.(type) {
		case []any:
			if len(v) == 0 {
				return map[string]any{}
			}
			raw = v[0]
		case map[string]any:
			s, ok := v["output"].(string)
			if !ok {
				return v
			}
			var inner any
			if err := json.Unmarshal([]byte(s), &inner); err != nil {
				// output was plain text, not embedded JSON
				return map[string]any{"reply": s}
			}
			raw = inner
		default:
			return raw
		}
	}
	return raw
}
