// Package retrieve implements the driftwatch retrieve command. It walks a
// list of tracked article URLs, queries the Wayback Machine CDX index for
// each, extracts article text from every capture, and appends the results
// to the dataset.
package retrieve

import (
	"bufio"
	"context"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mementolab/driftwatch/internal/cdx"
	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/extract"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// DefaultURLsFile is the article list read when no URLs are given.
const DefaultURLsFile = "articles.txt"

// Archive politeness: pause range between articles.
const (
	minArticlePause = 2 * time.Second
	maxArticlePause = 10 * time.Second
)

// AppContext defines the interface the retrieve command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	Store() *dataset.Store
	CDXDir() string
	MaxCaptures() int
}

// NewCommand creates the retrieve command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var (
		urlsFile    string
		from        string
		to          string
		maxCaptures int
	)

	cmd := &cobra.Command{
		Use:   "retrieve [url...]",
		Short: "Retrieve archived snapshots of tracked articles",
		Long: `Retrieve queries the Wayback Machine CDX index for every tracked
article URL, downloads each capture's archived page, extracts the
article text, and appends the mementos to the dataset.

URLs come from positional arguments and from the URLs file (one URL
per line, # comments allowed). Articles are processed sequentially to
stay polite to the archive.`,
		Example: `  driftwatch retrieve
  driftwatch retrieve --from 20230101 --to 20231231
  driftwatch retrieve https://example.com/news/big-story --urls-file tracked.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := collectURLs(args, urlsFile)
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return errors.NewValidationError("urls", urlsFile, "no article URLs to retrieve")
			}

			r := newRetriever(app, from, to, maxCaptures)
			return r.run(cmd.Context(), urls)
		},
	}

	cmd.Flags().StringVar(&urlsFile, "urls-file", DefaultURLsFile, "file with one article URL per line")
	cmd.Flags().StringVar(&from, "from", "", "earliest capture date (YYYYMMDD)")
	cmd.Flags().StringVar(&to, "to", "", "latest capture date (YYYYMMDD)")
	cmd.Flags().IntVar(&maxCaptures, "max-captures", 0, "per-article capture cap (default from config)")

	return cmd
}

// collectURLs merges positional URLs with the URLs file. A missing file is
// only an error when the default is overridden explicitly; silence keeps
// `driftwatch retrieve <url>` working without an articles.txt.
func collectURLs(args []string, urlsFile string) ([]string, error) {
	urls := append([]string(nil), args...)

	f, err := os.Open(urlsFile)
	if err != nil {
		if os.IsNotExist(err) {
			if len(args) == 0 && urlsFile != DefaultURLsFile {
				return nil, errors.WrapIO("open urls file", urlsFile, err)
			}
			return urls, nil
		}
		return nil, errors.WrapIO("open urls file", urlsFile, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read urls file", urlsFile, err)
	}
	return urls, nil
}

// retriever drives the per-article CDX query, extraction, and append.
type retriever struct {
	app         AppContext
	client      *cdx.Client
	fetcher     *extract.Fetcher
	from, to    string
	maxCaptures int
	rng         *rand.Rand
	sleep       func(context.Context, time.Duration) error
}

func newRetriever(app AppContext, from, to string, maxCaptures int) *retriever {
	logger := app.Logger()
	if maxCaptures <= 0 {
		maxCaptures = app.MaxCaptures()
	}
	return &retriever{
		app:         app,
		client:      cdx.New(cdx.WithLogger(*logger)),
		fetcher:     extract.NewFetcher(extract.WithLogger(*logger)),
		from:        from,
		to:          to,
		maxCaptures: maxCaptures,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:       sleepCtx,
	}
}

func (r *retriever) run(ctx context.Context, urls []string) error {
	logger := r.app.Logger()

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.retrieveArticle(ctx, url); err != nil {
			if errors.IsCanceled(err) || ctx.Err() != nil {
				return err
			}
			logger.Error().Str("url", url).Err(err).Msg("article retrieval failed")
		}

		// Jittered pause between articles, skipped after the last one
		if i < len(urls)-1 {
			pause := minArticlePause + time.Duration(r.rng.Int63n(int64(maxArticlePause-minArticlePause)))
			if err := r.sleep(ctx, pause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *retriever) retrieveArticle(ctx context.Context, url string) error {
	logger := r.app.Logger()
	title := dataset.Title(url)

	records, err := r.client.Fetch(ctx, cdx.Query{URL: url, From: r.from, To: r.to})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		logger.Info().Str("url", url).Msg("no captures in the CDX index")
		return nil
	}

	cdxPath, err := cdx.WriteFile(r.app.CDXDir(), title, records)
	if err != nil {
		return err
	}

	first, last, _ := cdx.FirstLast(records)
	logger.Info().
		Str("title", title).
		Str("cdx_file", cdxPath).
		Int("captures", len(records)).
		Str("first", first).
		Str("last", last).
		Msg("CDX index fetched")

	if len(records) > r.maxCaptures {
		logger.Warn().
			Int("captures", len(records)).
			Int("max", r.maxCaptures).
			Msg("capping captures")
		records = records[:r.maxCaptures]
	}

	var mementos []dataset.Memento
	for _, rec := range records {
		m, err := r.fetcher.Extract(ctx, rec.ReplayURL)
		if err != nil {
			if errors.IsCanceled(err) || ctx.Err() != nil {
				return err
			}
			logger.Warn().Str("replay_url", rec.ReplayURL).Err(err).Msg("capture skipped")
			continue
		}
		mementos = append(mementos, m)
	}

	if len(mementos) == 0 {
		logger.Warn().Str("title", title).Msg("no extractable captures")
		return nil
	}

	if err := r.app.Store().Append(title, mementos); err != nil {
		return err
	}
	logger.Info().Str("title", title).Int("mementos", len(mementos)).Msg("dataset updated")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
