// Package dataset manages the per-article memento collections produced by
// the retrieve stage and consumed by the analysis and aggregation stages.
// Each article is one JSON array file under the dataset directory; each
// element pairs extracted article content with WARC-style capture metadata.
package dataset

import (
	"crypto/md5"  //nolint:gosec // url-hash matches the archived dataset format, not a security boundary
	"crypto/sha1" //nolint:gosec // warc-block-digest is defined as sha1 by the WARC convention
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Memento is one archived capture of an article: extracted content plus
// capture metadata.
type Memento struct {
	Metadata Metadata `json:"metadata"`
	Article  Article  `json:"article"`
}

// Article holds the text extracted from an archived page.
type Article struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Authors []string `json:"authors"`
}

// Metadata carries WARC-style capture metadata. Field names match the
// on-disk dataset format.
type Metadata struct {
	WARCDate        string `json:"warc-date"`
	WARCRecordID    string `json:"warc-record-id"`
	WARCBlockDigest string `json:"warc-block-digest"`
	WARCTargetURI   string `json:"warc-target-uri"`
	ContentLength   int    `json:"content-length"`
	URLHash         string `json:"url-hash"`
}

// NewMetadata builds capture metadata for an extracted memento.
// capturedAt is the capture time parsed from the replay URL timestamp.
func NewMetadata(replayURL, text string, capturedAt time.Time) Metadata {
	blockDigest := sha1.Sum([]byte(text)) //nolint:gosec
	urlHash := md5.Sum([]byte(replayURL)) //nolint:gosec

	return Metadata{
		WARCDate:        capturedAt.UTC().Format("2006-01-02T15:04:05") + "Z",
		WARCRecordID:    fmt.Sprintf("<urn:uuid:%s>", uuid.New()),
		WARCBlockDigest: "sha1:" + hex.EncodeToString(blockDigest[:]),
		WARCTargetURI:   replayURL,
		ContentLength:   len(text),
		URLHash:         hex.EncodeToString(urlHash[:]),
	}
}

// CapturedAt parses the memento's warc-date. The zero time and false are
// returned when the date is absent or unparseable.
func (m Memento) CapturedAt() (time.Time, bool) {
	t, err := ParseWARCDate(m.Metadata.WARCDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
