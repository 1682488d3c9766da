package insight

import (
	"encoding/json"
	"strings"
)

// ParsePayload repairs and parses collaborator output into a loosely typed
// object. Repair steps, in order: strip a leading/trailing code fence,
// attempt a parse, and on failure retry on the first top-level
// brace-delimited span in the text.
func ParsePayload(raw string) (map[string]any, error) {
	clean := stripCodeFences(raw)
	var data map[string]any
	if err := json.Unmarshal([]byte(clean), &data); err == nil {
		return data, nil
	}
	span := braceSpan(clean)
	if span == "" {
		return nil, newParseError("no JSON object found in collaborator response")
	}
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, newParseError("collaborator response is not valid JSON: " + err.Error())
	}
	return data, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}

// braceSpan returns the span from the first '{' to the last '}', or ""
// when no such span exists.
func braceSpan(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
