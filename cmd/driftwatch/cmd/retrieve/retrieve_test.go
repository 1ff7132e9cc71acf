package retrieve

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolab/driftwatch/internal/cdx"
	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/extract"
)

func TestCollectURLs(t *testing.T) {
	dir := t.TempDir()
	urlsFile := filepath.Join(dir, "articles.txt")
	content := "# tracked articles\nhttps://example.com/a\n\nhttps://example.com/b\n"
	require.NoError(t, os.WriteFile(urlsFile, []byte(content), 0o644))

	urls, err := collectURLs([]string{"https://example.com/c"}, urlsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/c",
		"https://example.com/a",
		"https://example.com/b",
	}, urls)
}

func TestCollectURLsMissingDefaultFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultURLsFile)

	urls, err := collectURLs([]string{"https://example.com/a"}, missing)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, urls)
}

func TestCollectURLsMissingExplicitFile(t *testing.T) {
	_, err := collectURLs(nil, filepath.Join(t.TempDir(), "tracked.txt"))
	assert.Error(t, err)
}

type testApp struct {
	logger      zerolog.Logger
	store       *dataset.Store
	cdxDir      string
	maxCaptures int
}

func (a *testApp) Logger() *zerolog.Logger { return &a.logger }
func (a *testApp) Store() *dataset.Store   { return a.store }
func (a *testApp) CDXDir() string          { return a.cdxDir }
func (a *testApp) MaxCaptures() int        { return a.maxCaptures }

const articlePage = `<!DOCTYPE html>
<html><head><title>Big story</title></head>
<body><article><p>The vote passed late on Friday.</p></article></body></html>`

func TestRetrieverRun(t *testing.T) {
	articleURL := "https://example.com/news/big-story-update"

	replaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer replaySrv.Close()

	cdxSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("showNumPages") == "true" {
			_, _ = w.Write([]byte("1\n"))
			return
		}
		_, _ = w.Write([]byte(
			"com,example)/news/big-story-update 20230101000000 " + articleURL + " text/html 200 AAAA 1000\n" +
				"com,example)/news/big-story-update 20230102000000 " + articleURL + " text/html 200 BBBB 1001\n"))
	}))
	defer cdxSrv.Close()

	app := &testApp{
		logger:      zerolog.Nop(),
		store:       dataset.NewStore(t.TempDir()),
		cdxDir:      t.TempDir(),
		maxCaptures: 10,
	}

	r := &retriever{
		app: app,
		client: cdx.New(
			cdx.WithBaseURL(cdxSrv.URL),
			cdx.WithReplayBase(replaySrv.URL),
			cdx.WithLogger(app.logger),
		),
		fetcher: extract.NewFetcher(
			extract.WithDelayRange(time.Millisecond, 2*time.Millisecond),
			extract.WithLogger(app.logger),
		),
		maxCaptures: app.maxCaptures,
		rng:         rand.New(rand.NewSource(1)),
		sleep:       func(context.Context, time.Duration) error { return nil },
	}

	require.NoError(t, r.run(context.Background(), []string{articleURL}))

	title := dataset.Title(articleURL)
	assert.Equal(t, "big-story-update", title)

	mementos, err := app.store.Load(title)
	require.NoError(t, err)
	require.Len(t, mementos, 2)
	assert.Equal(t, "Big story", mementos[0].Article.Title)
	assert.Equal(t, "The vote passed late on Friday.", mementos[0].Article.Text)
	assert.Equal(t, "2023-01-01T00:00:00Z", mementos[0].Metadata.WARCDate)
	assert.Contains(t, mementos[0].Metadata.WARCTargetURI, "/web/20230101000000/")

	cdxData, err := os.ReadFile(filepath.Join(app.cdxDir, title+"_cdx.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(cdxData), "20230101000000")
}

func TestRetrieverCapsCaptures(t *testing.T) {
	articleURL := "https://example.com/news/capped-story-run"

	replaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer replaySrv.Close()

	cdxSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("showNumPages") == "true" {
			_, _ = w.Write([]byte("1\n"))
			return
		}
		_, _ = w.Write([]byte(
			"a 20230101000000 u t 200 A 1\n" +
				"a 20230102000000 u t 200 B 1\n" +
				"a 20230103000000 u t 200 C 1\n"))
	}))
	defer cdxSrv.Close()

	app := &testApp{
		logger:      zerolog.Nop(),
		store:       dataset.NewStore(t.TempDir()),
		cdxDir:      t.TempDir(),
		maxCaptures: 1,
	}

	r := &retriever{
		app: app,
		client: cdx.New(
			cdx.WithBaseURL(cdxSrv.URL),
			cdx.WithReplayBase(replaySrv.URL),
			cdx.WithLogger(app.logger),
		),
		fetcher: extract.NewFetcher(
			extract.WithDelayRange(time.Millisecond, 2*time.Millisecond),
			extract.WithLogger(app.logger),
		),
		maxCaptures: 1,
		rng:         rand.New(rand.NewSource(1)),
		sleep:       func(context.Context, time.Duration) error { return nil },
	}

	require.NoError(t, r.run(context.Background(), []string{articleURL}))

	mementos, err := app.store.Load(dataset.Title(articleURL))
	require.NoError(t, err)
	assert.Len(t, mementos, 1)
}
