package extract

import (
	"encoding/json"
	"strings"
)

// JSONObject recovers a single JSON object from free text produced by an LLM.
// The text is parsed as-is first. If that fails, the first and last line are
// dropped (one decorative line per side, e.g. a ``` fence) and the remainder is
// parsed again. When both attempts fail an empty, non-nil map is returned;
// callers treat an empty map as "extraction failed".
func JSONObject(text string) map[string]any {
	if obj, ok := parseObject(text); ok {
		return obj
	}

	lines := strings.Split(text, "\n")
	if len(lines) >= 3 {
		inner := strings.Join(lines[1:len(lines)-1], "\n")
		if obj, ok := parseObject(inner); ok {
			return obj
		}
	}

	return map[string]any{}
}

func parseObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	// "null" unmarshals into a nil map without error
	if obj == nil {
		return nil, false
	}
	return obj, true
}
