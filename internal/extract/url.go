// Package extract downloads archived page replays and pulls the article
// content out of the HTML: title, body text, and authors.
package extract

import (
	"strings"
	"time"

	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// SnapshotTime extracts the capture time from a replay URL. The
// 14-digit timestamp sits in the fifth slash-separated segment
// (https: / "" / host / web / <timestamp>); replay modifiers such as
// "id_" are stripped.
func SnapshotTime(replayURL string) (time.Time, error) {
	parts := strings.Split(replayURL, "/")
	if len(parts) < 5 {
		return time.Time{}, errors.NewParseError("url", "", "no timestamp segment in "+replayURL, errors.ErrInvalidInput)
	}
	ts := parts[4]
	if i := strings.Index(ts, "id_"); i >= 0 {
		ts = ts[:i]
	}
	t, err := dataset.ParseSnapshotTimestamp(ts)
	if err != nil {
		return time.Time{}, errors.NewParseError("url", "", "bad timestamp in "+replayURL, err)
	}
	return t, nil
}
