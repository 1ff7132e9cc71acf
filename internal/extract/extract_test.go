package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolab/driftwatch/pkg/errors"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title - Example News</title>
  <meta property="og:title" content="Budget Vote Delayed Amid Protests">
  <meta name="author" content="By Jane Roe and John Doe">
  <script>var tracking = true;</script>
</head>
<body>
  <div id="wm-ipp-base"><p>INTERNET ARCHIVE replay banner text</p></div>
  <nav><p>Home | World | Politics</p></nav>
  <article>
    <p>The vote was postponed on   Tuesday.</p>
    <p>Officials said a new date has not been set.</p>
  </article>
  <footer><p>Copyright notice</p></footer>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	article, err := FromHTML(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Budget Vote Delayed Amid Protests", article.Title)
	assert.Equal(t, []string{"Jane Roe", "John Doe"}, article.Authors)
	assert.Equal(t, "The vote was postponed on Tuesday.\n\nOfficials said a new date has not been set.", article.Text)
}

func TestFromHTMLNoArticleElement(t *testing.T) {
	article, err := FromHTML(`<html><head><title>T</title></head><body><p>only paragraph</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "T", article.Title)
	assert.Equal(t, "only paragraph", article.Text)
}

func TestSnapshotTime(t *testing.T) {
	got, err := SnapshotTime("https://web.archive.org/web/20230517083000/https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 5, 17, 8, 30, 0, 0, time.UTC), got)

	got, err = SnapshotTime("https://web.archive.org/web/20230517083000id_/https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 5, 17, 8, 30, 0, 0, time.UTC), got)

	_, err = SnapshotTime("https://example.com/no-timestamp")
	assert.Error(t, err)

	_, err = SnapshotTime("https://web.archive.org/web/garbage/https://example.com/a")
	assert.Error(t, err)
}

func newTestFetcher(srvClient *http.Client) *Fetcher {
	f := NewFetcher(
		WithHTTPClient(srvClient),
		WithDelayRange(0, 0),
	)
	f.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return f
}

func TestFetcherExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.Client())
	memento, err := f.Extract(context.Background(), srv.URL+"/web/20230517083000/https://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, "Budget Vote Delayed Amid Protests", memento.Article.Title)
	assert.Equal(t, "2023-05-17T08:30:00Z", memento.Metadata.WARCDate)
	assert.Equal(t, srv.URL+"/web/20230517083000/https://example.com/a", memento.Metadata.WARCTargetURI)
	assert.Equal(t, len(memento.Article.Text), memento.Metadata.ContentLength)
	assert.Contains(t, memento.Metadata.WARCBlockDigest, "sha1:")
}

func TestFetcherExtractRetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "replay unavailable", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.Client())
	memento, err := f.Extract(context.Background(), srv.URL+"/web/20230517083000/https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotEmpty(t, memento.Article.Text)
}

func TestFetcherExtractExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.Client())
	f.maxRetries = 2
	_, err := f.Extract(context.Background(), srv.URL+"/web/20230517083000/https://example.com/a")
	require.Error(t, err)

	var retrieveErr *errors.RetrieveError
	require.ErrorAs(t, err, &retrieveErr)
	assert.Equal(t, 2, retrieveErr.Attempt)
}

func TestFetcherExtractBadTimestamp(t *testing.T) {
	f := NewFetcher()
	_, err := f.Extract(context.Background(), "https://web.archive.org/web/notatimestamp/https://example.com/a")
	assert.Error(t, err)
}
