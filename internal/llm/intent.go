package llm

import (
	"encoding/json"

	"github.com/banking/retirement-service/internal/domain"
)

// ExtractIntent scans free-text model output for the first balanced JSON
// object carrying a non-empty "intent" key. Surrounding prose and code
// fences are tolerated; the reported ok is false when no such object exists.
func ExtractIntent(text string) (*domain.Intent, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end, found := matchObject(text, start)
		if !found {
			continue
		}

		var intent domain.Intent
		if err := json.Unmarshal([]byte(text[start:end]), &intent); err != nil {
			continue
		}
		if intent.Intent == "" {
			continue
		}
		return &intent, true
	}
	return nil, false
}

// matchObject finds the end (exclusive) of the JSON object opening at start,
// tracking brace depth outside of string literals
func matchObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
