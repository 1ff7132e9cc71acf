package analysis

import (
	"strings"

	"github.com/mementolab/driftwatch/pkg/errors"
)

// FirstJSONArray returns the first complete top-level JSON array in
// text. Models asked for bare JSON sometimes wrap it in prose or code
// fences; this digs the array out. Bracket depth is tracked outside
// string literals only.
func FirstJSONArray(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", errors.NewParseError("json", "", "no '[' found in model output", errors.ErrInvalidInput)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errors.NewParseError("json", "", "no complete top-level JSON array in model output", errors.ErrInvalidInput)
}
