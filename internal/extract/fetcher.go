package extract

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

const (
	// DefaultMaxRetries bounds fetch attempts per capture.
	DefaultMaxRetries = 5

	defaultTimeout = 60 * time.Second
)

// Fetcher downloads archived pages and turns them into mementos.
// Requests are spaced with a random pre-fetch delay and retried with
// exponential backoff, keeping load on the archive polite.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxRetries int
	minDelay   time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger
	rng        *rand.Rand
	sleep      func(ctx context.Context, d time.Duration) error
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) { f.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxRetries overrides the per-capture attempt limit.
func WithMaxRetries(n int) FetcherOption {
	return func(f *Fetcher) { f.maxRetries = n }
}

// WithDelayRange sets the random pre-fetch delay window.
func WithDelayRange(minD, maxD time.Duration) FetcherOption {
	return func(f *Fetcher) { f.minDelay, f.maxDelay = minD, maxD }
}

// WithLogger sets the fetcher logger.
func WithLogger(logger zerolog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher returns a Fetcher with defaults applied.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "driftwatch research crawler (+https://github.com/mementolab/driftwatch)",
		maxRetries: DefaultMaxRetries,
		minDelay:   2 * time.Second,
		maxDelay:   10 * time.Second,
		logger:     *logging.Default(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter, not crypto
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
}

func (f *Fetcher) jitter(minD, maxD time.Duration) time.Duration {
	if maxD <= minD {
		return minD
	}
	return minD + time.Duration(f.rng.Int63n(int64(maxD-minD)))
}

// Extract downloads a replay URL and produces a memento with extracted
// article content and capture metadata. Failures are retried with
// exponential backoff up to the attempt limit.
func (f *Fetcher) Extract(ctx context.Context, replayURL string) (dataset.Memento, error) {
	capturedAt, err := SnapshotTime(replayURL)
	if err != nil {
		return dataset.Memento{}, err
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if err := f.sleep(ctx, f.jitter(f.minDelay, f.maxDelay)); err != nil {
			return dataset.Memento{}, err
		}

		article, err := f.fetchArticle(ctx, replayURL)
		if err == nil {
			return dataset.Memento{
				Metadata: dataset.NewMetadata(replayURL, article.Text, capturedAt),
				Article:  article,
			}, nil
		}
		if errors.IsCanceled(err) {
			return dataset.Memento{}, err
		}
		lastErr = err
		f.logger.Warn().
			Str("url", replayURL).
			Int("attempt", attempt+1).
			Int("max_attempts", f.maxRetries).
			Err(err).
			Msg("archived page fetch failed")

		backoff := time.Duration(math.Pow(2, float64(attempt)))*time.Second + f.jitter(time.Second, 5*time.Second)
		if err := f.sleep(ctx, backoff); err != nil {
			return dataset.Memento{}, err
		}
	}
	return dataset.Memento{}, &errors.RetrieveError{URL: replayURL, Attempt: f.maxRetries, Err: lastErr}
}

func (f *Fetcher) fetchArticle(ctx context.Context, replayURL string) (dataset.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, replayURL, nil)
	if err != nil {
		return dataset.Article{}, errors.WrapAPI("wayback", 0, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return dataset.Article{}, errors.ErrCanceled
		}
		return dataset.Article{}, errors.WrapAPI("wayback", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dataset.Article{}, &errors.APIError{
			Service:    "wayback",
			StatusCode: resp.StatusCode,
			Message:    "unexpected replay status",
			Endpoint:   replayURL,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return dataset.Article{}, errors.WrapAPI("wayback", 0, err)
	}

	article, err := FromHTML(string(body))
	if err != nil {
		return dataset.Article{}, err
	}
	if article.Title == "" && strings.TrimSpace(article.Text) == "" {
		return dataset.Article{}, errors.NewValidationError("article", replayURL, "no extractable content")
	}
	return article, nil
}
