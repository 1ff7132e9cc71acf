package analysis

import (
	"strings"
	"unicode"
)

func trimLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize lowercases text and collapses all whitespace runs to a
// single space. Used for the change gate, never for stored output.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// HasChange reports whether two texts differ after normalization.
// Pairs without a real change never reach the model.
func HasChange(oldText, newText string) bool {
	return Normalize(oldText) != Normalize(newText)
}

// SplitSentences breaks text into rough sentences: on whitespace that
// follows sentence-final punctuation (. ? !) and on newlines. The
// counts derived from it only bound the expected unit array length, so
// rough is enough.
func SplitSentences(text string) []string {
	var parts []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, s)
		}
		b.Reset()
	}

	afterStop := false
	for _, r := range strings.TrimSpace(text) {
		if r == '\n' {
			flush()
			afterStop = false
			continue
		}
		if afterStop && unicode.IsSpace(r) {
			flush()
			afterStop = false
			continue
		}
		b.WriteRune(r)
		afterStop = r == '.' || r == '?' || r == '!'
	}
	flush()
	return parts
}

// CountSentences returns the rough sentence count of text.
func CountSentences(text string) int {
	return len(SplitSentences(text))
}
