// Package extract isolates the final status-marked JSON response from the
// explanatory prose an LLM wraps around it. Models narrate ("Let me check
// that...") before committing to the structured answer; callers want only the
// last committed object.
package extract

import (
	"encoding/json"
	"regexp"
)

// statusMarker anchors a candidate response: an object opening with a status
// field holding one of the known terminal states.
var statusMarker = regexp.MustCompile(`\{\s*"status"\s*:\s*"(success|clarification|error)"`)

// Isolate returns the last status-marked JSON object embedded in text, or
// text unchanged when no valid candidate exists. The operation is idempotent:
// the extracted object still begins with the marker, so re-applying Isolate
// returns it again.
func Isolate(text string) string {
	matches := statusMarker.FindAllStringIndex(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if obj, ok := scanObject(text[matches[i][0]:]); ok {
			return obj
		}
	}
	return text
}

// Status returns the status field of a response object, or "" when text is
// not a status-marked object.
func Status(text string) string {
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return ""
	}
	return resp.Status
}

// scanObject finds the end of the object opening at s[0] by brace depth.
// The scan does not track string literals, so a brace inside a string can
// close the candidate early; the json.Valid gate rejects such truncations and
// the caller falls back to an earlier match.
func scanObject(s string) (string, bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := s[:i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
