package dataset

import (
	"strings"
	"time"

	"github.com/mementolab/driftwatch/pkg/errors"
)

// warcDateLayouts covers the date forms observed across dataset files:
// the canonical Zulu form plus offset and space-separated variants left
// behind by older extraction runs.
var warcDateLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseWARCDate parses a warc-date string, tolerating the handful of
// formats found in existing datasets. The result is normalized to UTC.
func ParseWARCDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.NewParseError("warc-date", "", "empty date", errors.ErrInvalidInput)
	}
	for _, layout := range warcDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.NewParseError("warc-date", "", "unrecognized date "+s, errors.ErrInvalidInput)
}

// FormatWARCDate renders t in the canonical dataset form, seconds
// precision with a literal Z suffix.
func FormatWARCDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + "Z"
}

// ParseSnapshotTimestamp parses a 14-digit archive timestamp
// (yyyyMMddhhmmss) as UTC.
func ParseSnapshotTimestamp(ts string) (time.Time, error) {
	t, err := time.ParseInLocation("20060102150405", ts, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewParseError("timestamp", "", "invalid snapshot timestamp "+ts, err)
	}
	return t, nil
}
