package charts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/metrics"
	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

// Generator renders one chart per analyzed article.
type Generator struct {
	store       *dataset.Store
	analysisDir string
	logger      zerolog.Logger
}

// NewGenerator returns a Generator reading the dataset store and the
// analysis directory.
func NewGenerator(store *dataset.Store, analysisDir string) *Generator {
	return &Generator{store: store, analysisDir: analysisDir, logger: *logging.Default()}
}

// WithLogger sets the generator logger.
func (g *Generator) WithLogger(logger zerolog.Logger) *Generator {
	g.logger = logger
	return g
}

// Run renders a chart for every article folder with a dataset match.
// Folders without one are skipped with a warning, not failed: the
// dataset may cover more or fewer articles than past analysis runs.
func (g *Generator) Run() error {
	index, err := IndexDataset(g.store)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(g.analysisDir)
	if err != nil {
		return errors.WrapIO("read analysis directory", g.analysisDir, err)
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() {
			slugs = append(slugs, e.Name())
		}
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		pairIndex, ok := index[slug]
		if !ok {
			g.logger.Warn().Str("slug", slug).Msg("no dataset match for analysis folder, skipping chart")
			continue
		}
		if err := g.renderArticle(slug, pairIndex); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) renderArticle(slug string, pairIndex PairIndex) error {
	articleDir := filepath.Join(g.analysisDir, slug)
	counts, err := LoadImportanceCounts(articleDir)
	if err != nil {
		return err
	}

	picked := PickDailyPairs(pairIndex.Dates, counts)
	series := Series{}
	for _, pi := range picked {
		cnt := counts[pi]
		series.Dates = append(series.Dates, pairIndex.Dates[pi])
		series.Important = append(series.Important, cnt.Important)
		series.NotImportant = append(series.NotImportant, cnt.NotImportant)
	}
	if len(pairIndex.Timestamps) > 0 {
		first := clipDay(pairIndex.Timestamps[0])
		last := clipDay(pairIndex.Timestamps[len(pairIndex.Timestamps)-1])
		series.Subtitle = fmt.Sprintf("Coverage: %s → %s (one pair of consecutive mementos per day)", first, last)
	}

	outDir := filepath.Join(articleDir, metrics.MetricsDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.WrapIO("create metrics directory", outDir, err)
	}
	outPath := filepath.Join(outDir, OutFileName)
	if err := Render(outPath, series); err != nil {
		return err
	}
	g.logger.Info().Str("file", outPath).Int("days", len(series.Dates)).Msg("saved chart")
	return nil
}

func clipDay(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
