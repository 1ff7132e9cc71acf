package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mementolab/driftwatch/internal/dataset"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		DatasetDir:  t.TempDir(),
		AnalysisDir: t.TempDir(),
		CDXDir:      t.TempDir(),
	}
	cfg.applyDefaults()
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	logger := zerolog.Nop()
	a, err := New("test", "none", "now", WithConfig(testConfig(t)), WithLogger(&logger))
	require.NoError(t, err)
	return a
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, DefaultDatasetDir, cfg.DatasetDir)
	assert.Equal(t, DefaultAnalysisDir, cfg.AnalysisDir)
	assert.Equal(t, DefaultCDXDir, cfg.CDXDir)
	assert.Equal(t, DefaultMaxCaptures, cfg.MaxCaptures)
	assert.Equal(t, DefaultRPM, cfg.RPM)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultBaseBackoff, cfg.BaseBackoff)
	assert.Equal(t, DefaultFilePause, cfg.FilePause)

	cfg = &Config{DatasetDir: "data", RPM: 60}
	cfg.applyDefaults()
	assert.Equal(t, "data", cfg.DatasetDir)
	assert.Equal(t, 60, cfg.RPM)
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "json", LogLevel: "debug"}

	cfg.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "json", cfg.Format, "empty flag keeps existing format")
	assert.Equal(t, "debug", cfg.LogLevel, "empty flag keeps existing level")

	cfg.UpdateFromFlags(false, true, false, "csv", "warn")
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"explicit wins", Config{LogLevel: "error", Verbose: true}, "error"},
		{"invalid explicit falls back", Config{LogLevel: "loud"}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"verbose and quiet uses quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"default", Config{}, "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestAppAccessors(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, "test", a.Version())
	assert.Equal(t, a.Config().DatasetDir, a.DatasetDir())
	assert.Equal(t, a.Config().AnalysisDir, a.AnalysisDir())
	assert.Equal(t, DefaultMaxCaptures, a.MaxCaptures())
	assert.Equal(t, DefaultRPM, a.RPM())
	assert.Equal(t, DefaultBaseBackoff, a.BaseBackoff())
	assert.NotNil(t, a.Store())
}

func TestCountCommandCSV(t *testing.T) {
	a := newTestApp(t)

	store := a.Store()
	m := dataset.Memento{
		Metadata: dataset.NewMetadata("https://web.archive.org/web/20230101000000/https://example.com/story", "text", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		Article:  dataset.Article{Text: "text"},
	}
	require.NoError(t, store.Write("story", []dataset.Memento{m, m, m}))

	cmd := a.NewCountCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--csv"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "filename,mementos,consecutive_pairs", lines[0])
	assert.Equal(t, "story"+dataset.FileSuffix+",3,2", lines[1])
	assert.Equal(t, "__TOTAL__,3,2", lines[2])
}

func TestCountRowsEmptyDataset(t *testing.T) {
	a := newTestApp(t)

	rows, err := a.countRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "__TOTAL__", rows[0].Filename)
	assert.Zero(t, rows[0].Mementos)
}

func TestVersionCommand(t *testing.T) {
	a := newTestApp(t)

	cmd := a.NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)
	assert.Equal(t, "driftwatch test\n", buf.String())

	a.config.Verbose = true
	buf.Reset()
	cmd.Run(cmd, nil)
	assert.Contains(t, buf.String(), "commit: none")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	a := newTestApp(t)
	root := a.createRootCommand()

	want := []string{"retrieve", "analyze", "metrics", "charts", "count", "serve", "version"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}
