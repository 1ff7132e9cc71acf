package cdx

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mementolab/driftwatch/pkg/errors"
)

// WriteFile saves capture records as a raw CDX listing under dir, one
// line per capture with the replay URL appended. Returns the file path.
func WriteFile(dir, title string, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapIO("create cdx directory", dir, err)
	}
	path := filepath.Join(dir, title+"_cdx.txt")

	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Raw)
		b.WriteString(" ")
		b.WriteString(r.ReplayURL)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", errors.WrapIO("write cdx file", path, err)
	}
	return path, nil
}
