package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

// Runner walks every dataset file, sorts its mementos chronologically,
// and analyzes each consecutive pair that actually changed. Results go
// to <analysis dir>/<slug>/<pair index>.json. Unchanged pairs cost no
// model call; failed pairs are logged and skipped so a run always
// makes it through the whole dataset.
type Runner struct {
	store       *dataset.Store
	analyzer    *Analyzer
	analysisDir string
	startPair   int
	filePause   time.Duration
	logger      zerolog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStartPair skips pair indexes below n, resuming an earlier run.
func WithStartPair(n int) RunnerOption {
	return func(r *Runner) { r.startPair = n }
}

// WithFilePause sets the pause between dataset files.
func WithFilePause(d time.Duration) RunnerOption {
	return func(r *Runner) { r.filePause = d }
}

// WithRunnerLogger sets the runner logger.
func WithRunnerLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner returns a Runner writing under analysisDir.
func NewRunner(store *dataset.Store, analyzer *Analyzer, analysisDir string, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:       store,
		analyzer:    analyzer,
		analysisDir: analysisDir,
		filePause:   2 * time.Second,
		logger:      *logging.Default(),
		sleep: func(ctx context.Context, d time.Duration) error {
			if d <= 0 {
				return ctx.Err()
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return errors.ErrCanceled
			case <-timer.C:
				return nil
			}
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Slug derives the analysis output folder name for a memento list:
// the first memento's target URI, slugified, with the dataset title as
// fallback.
func Slug(title string, mementos []dataset.Memento) string {
	for _, m := range mementos {
		if m.Metadata.WARCTargetURI != "" {
			return dataset.Slugify(m.Metadata.WARCTargetURI)
		}
	}
	return dataset.Slugify(title)
}

// Run analyzes every dataset file in the store.
func (r *Runner) Run(ctx context.Context) error {
	titles, err := r.store.List()
	if err != nil {
		return err
	}
	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return errors.ErrCanceled
		}
		if err := r.runFile(ctx, title); err != nil {
			return err
		}
		if i < len(titles)-1 && r.filePause > 0 {
			if err := r.sleep(ctx, r.filePause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runFile(ctx context.Context, title string) error {
	mementos, err := r.store.Load(title)
	if err != nil {
		return err
	}
	if len(mementos) < 2 {
		r.logger.Debug().Str("dataset", title).Int("mementos", len(mementos)).
			Msg("skipping dataset with fewer than two mementos")
		return nil
	}
	dataset.SortByWARCDate(mementos)

	slug := Slug(title, mementos)
	outDir := filepath.Join(r.analysisDir, slug)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.WrapIO("create analysis directory", outDir, err)
	}

	r.logger.Info().Str("dataset", title).Str("slug", slug).
		Int("pairs", len(mementos)-1).Msg("analyzing dataset")

	for i := 0; i < len(mementos)-1; i++ {
		if err := ctx.Err(); err != nil {
			return errors.ErrCanceled
		}
		if i < r.startPair {
			continue
		}
		if err := r.runPair(ctx, outDir, slug, i, mementos[i], mementos[i+1]); err != nil {
			if errors.IsCanceled(err) {
				return err
			}
			r.logger.Error().Str("slug", slug).Int("pair_index", i).Err(err).
				Msg("pair analysis failed, continuing")
		}
	}
	return nil
}

func (r *Runner) runPair(ctx context.Context, outDir, slug string, pairIndex int, older, newer dataset.Memento) error {
	oldText := older.Article.Text
	newText := newer.Article.Text
	if !HasChange(oldText, newText) {
		return nil
	}

	units, err := r.analyzer.AlignAndAssess(ctx, oldText, newText)
	if err != nil {
		return errors.NewAnalysisError(slug, pairIndex, err)
	}

	doc := Document{
		PairIndex:   pairIndex,
		MetadataOld: older.Metadata,
		MetadataNew: newer.Metadata,
		Items:       units,
	}
	for _, u := range units {
		if Present(u.Sentences.M1) {
			doc.NSentencesOld++
		}
		if Present(u.Sentences.M2) {
			doc.NSentencesNew++
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewAnalysisError(slug, pairIndex, err)
	}
	outFile := filepath.Join(outDir, fmt.Sprintf("%04d.json", pairIndex))
	if err := os.WriteFile(outFile, append(data, '\n'), 0o644); err != nil {
		return errors.WrapIO("write analysis file", outFile, err)
	}
	r.logger.Info().Str("file", outFile).Msg("saved pair analysis")
	return nil
}
