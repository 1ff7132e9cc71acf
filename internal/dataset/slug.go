package dataset

import (
	"regexp"
	"strings"
)

var (
	slugScheme  = regexp.MustCompile(`https?://`)
	slugUnsafe  = regexp.MustCompile(`[^a-z0-9\-_.]+`)
	slugUnderRn = regexp.MustCompile(`_+`)
)

// Slugify derives a filesystem-safe identifier from a URL: lowercased,
// http(s) schemes dropped, runs of characters outside [a-z0-9-_.]
// collapsed to a single underscore, capped at 120 bytes.
func Slugify(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	s = slugScheme.ReplaceAllString(s, "")
	s = slugUnsafe.ReplaceAllString(s, "_")
	s = slugUnderRn.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unknown_link"
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}

// Title derives a short dataset title from an article URL: the last
// path segment with its extension dropped, truncated to the first three
// hyphen-separated words.
func Title(rawURL string) string {
	s := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	words := strings.Split(s, "-")
	if len(words) < 3 {
		return s
	}
	return strings.Join(words[:3], "-")
}
