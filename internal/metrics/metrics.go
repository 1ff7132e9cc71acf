package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

const (
	// MetricsDirName is the per-article subdirectory holding derived
	// outputs (metrics, charts).
	MetricsDirName = "metrics"

	// MetricsFileName is the aggregated metrics document.
	MetricsFileName = "metrics.json"
)

// Computer walks an analysis directory and writes a metrics report per
// article folder.
type Computer struct {
	analysisDir string
	logger      zerolog.Logger
}

// NewComputer returns a Computer over analysisDir.
func NewComputer(analysisDir string) *Computer {
	return &Computer{analysisDir: analysisDir, logger: *logging.Default()}
}

// WithLogger sets the computer logger.
func (c *Computer) WithLogger(logger zerolog.Logger) *Computer {
	c.logger = logger
	return c
}

// Run computes and writes metrics for every article folder. Folders
// without readable pair files are skipped.
func (c *Computer) Run() error {
	entries, err := os.ReadDir(c.analysisDir)
	if err != nil {
		return errors.WrapIO("read analysis directory", c.analysisDir, err)
	}

	var slugs []string
	for _, e := range entries {
		if e.IsDir() {
			slugs = append(slugs, e.Name())
		}
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		report, ok, err := c.ComputeArticle(slug)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := WriteReport(filepath.Join(c.analysisDir, slug), report); err != nil {
			return err
		}
		c.logger.Info().Str("slug", slug).Int("pairs", len(report.PerPair)).
			Msg("saved metrics")
	}
	return nil
}

// ComputeArticle aggregates one article folder. ok is false when the
// folder holds no usable pair files.
func (c *Computer) ComputeArticle(slug string) (Report, bool, error) {
	docs, err := c.loadPairDocs(filepath.Join(c.analysisDir, slug))
	if err != nil {
		return Report{}, false, err
	}
	if len(docs) == 0 {
		return Report{}, false, nil
	}

	perPair := make([]PairMetrics, 0, len(docs))
	for _, doc := range docs {
		perPair = append(perPair, ComputePair(doc))
	}
	SortPairs(perPair)

	return Report{Summary: BuildSummary(perPair), PerPair: perPair}, true, nil
}

// loadPairDocs reads the pair analysis files of one article folder,
// skipping unreadable or misshapen files with a warning.
func (c *Computer) loadPairDocs(articleDir string) ([]analysis.Document, error) {
	entries, err := os.ReadDir(articleDir)
	if err != nil {
		return nil, errors.WrapIO("read article directory", articleDir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if strings.EqualFold(e.Name(), MetricsFileName) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var docs []analysis.Document
	for _, name := range names {
		path := filepath.Join(articleDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn().Str("file", path).Err(err).Msg("skipping unreadable pair file")
			continue
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			c.logger.Warn().Str("file", path).Err(err).Msg("skipping unreadable pair file")
			continue
		}
		if _, ok := probe["items"]; !ok {
			c.logger.Warn().Str("file", path).Msg("skipping pair file without items")
			continue
		}
		var doc analysis.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			c.logger.Warn().Str("file", path).Err(err).Msg("skipping malformed pair file")
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// WriteReport saves a report under <articleDir>/metrics/metrics.json.
func WriteReport(articleDir string, report Report) error {
	dir := filepath.Join(articleDir, MetricsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO("create metrics directory", dir, err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.NewParseError("json", "", "encode metrics report", err)
	}
	path := filepath.Join(dir, MetricsFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.WrapIO("write metrics file", path, err)
	}
	return nil
}
