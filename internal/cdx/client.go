// Package cdx queries the Wayback Machine CDX index for the captures of
// a URL. Results are paged server-side; the client walks every page and
// returns parsed capture records with their replay URLs.
package cdx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/pkg/errors"
	"github.com/mementolab/driftwatch/pkg/logging"
)

const (
	// DefaultBaseURL is the Wayback Machine CDX search endpoint.
	DefaultBaseURL = "https://web.archive.org/cdx/search"

	// DefaultReplayBase is the host serving archived page replays.
	DefaultReplayBase = "https://web.archive.org"

	// DefaultUserAgent identifies the crawler to the archive. Archive
	// operators ask research crawlers to be identifiable.
	DefaultUserAgent = "driftwatch research crawler (+https://github.com/mementolab/driftwatch)"

	defaultTimeout = 120 * time.Second
)

// Client fetches capture listings from a CDX endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	replayBase string
	userAgent  string
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the CDX endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithReplayBase overrides the replay host used to build archived page URLs.
func WithReplayBase(base string) Option {
	return func(c *Client) { c.replayBase = strings.TrimRight(base, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a CDX client with defaults applied.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		replayBase: DefaultReplayBase,
		userAgent:  DefaultUserAgent,
		logger:     *logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query selects the captures of one URL within a date window.
type Query struct {
	URL  string // the original page URL, matched exactly
	From string // YYYYMMDD, inclusive
	To   string // YYYYMMDD, inclusive
}

// Record is one parsed CDX capture line plus its replay URL.
type Record struct {
	Raw       string // the original whitespace-separated CDX line
	Timestamp string // 14-digit capture timestamp
	ReplayURL string // https://<replay-base>/web/<timestamp>/<url>
}

// Day returns the YYYYMMDD prefix of the capture timestamp.
func (r Record) Day() string {
	if len(r.Timestamp) < 8 {
		return r.Timestamp
	}
	return r.Timestamp[:8]
}

func (c *Client) queryURL(q Query) string {
	params := url.Values{}
	params.Set("matchType", "exact")
	params.Set("from", q.From)
	params.Set("to", q.To)
	params.Set("filter", "statuscode:200")
	params.Set("url", q.URL)
	return c.baseURL + "?" + params.Encode()
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapAPI("wayback-cdx", 0, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapAPI("wayback-cdx", 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &errors.APIError{
			Service:    "wayback-cdx",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   rawURL,
		}
	}
	return resp, nil
}

// NumPages asks the index how many result pages the query spans.
func (c *Client) NumPages(ctx context.Context, q Query) (int, error) {
	resp, err := c.get(ctx, c.queryURL(q)+"&showNumPages=true")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, errors.WrapAPI("wayback-cdx", 0, err)
	}
	pages, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, errors.NewParseError("cdx", "", "page count "+strings.TrimSpace(string(body)), err)
	}
	return pages, nil
}

// FetchPage retrieves one page of capture records. Lines with fewer
// than two fields are skipped.
func (c *Client) FetchPage(ctx context.Context, q Query, page int) ([]Record, error) {
	resp, err := c.get(ctx, fmt.Sprintf("%s&page=%d", c.queryURL(q), page))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []Record
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ts := fields[1]
		records = append(records, Record{
			Raw:       line,
			Timestamp: ts,
			ReplayURL: fmt.Sprintf("%s/web/%s/%s", c.replayBase, ts, q.URL),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapAPI("wayback-cdx", 0, err)
	}
	return records, nil
}

// Fetch walks every result page of the query and returns all capture
// records in index order.
func (c *Client) Fetch(ctx context.Context, q Query) ([]Record, error) {
	pages, err := c.NumPages(ctx, q)
	if err != nil {
		return nil, err
	}

	var records []Record
	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.ErrCanceled
		}
		c.logger.Debug().
			Str("url", q.URL).
			Int("page", page+1).
			Int("pages", pages).
			Msg("downloading cdx page")
		pageRecords, err := c.FetchPage(ctx, q, page)
		if err != nil {
			return nil, err
		}
		records = append(records, pageRecords...)
	}
	return records, nil
}

// FirstLast reports the earliest and latest capture days (YYYYMMDD)
// among the records. ok is false when there are no records.
func FirstLast(records []Record) (first, last string, ok bool) {
	for _, r := range records {
		day := r.Day()
		if first == "" || day < first {
			first = day
		}
		if day > last {
			last = day
		}
	}
	return first, last, first != ""
}
