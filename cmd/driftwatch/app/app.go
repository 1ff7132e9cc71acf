// Package app provides the application context and dependency management
// for the driftwatch CLI. It centralizes configuration, logging, and shared
// pipeline dependencies so commands stay thin.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/internal/analysis/providers"
	"github.com/mementolab/driftwatch/internal/dataset"
)

// App represents the driftwatch application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// DatasetDir returns the dataset directory path.
func (a *App) DatasetDir() string {
	return a.config.DatasetDir
}

// AnalysisDir returns the analysis output directory path.
func (a *App) AnalysisDir() string {
	return a.config.AnalysisDir
}

// CDXDir returns the directory for raw CDX index files.
func (a *App) CDXDir() string {
	return a.config.CDXDir
}

// MaxCaptures returns the per-article capture cap for retrieval.
func (a *App) MaxCaptures() int {
	return a.config.MaxCaptures
}

// Provider returns the configured LLM provider name.
func (a *App) Provider() string {
	return a.config.Provider
}

// RPM returns the client-side request-per-minute budget for LLM calls.
func (a *App) RPM() int {
	return a.config.RPM
}

// MaxRetries returns the retry cap for transient LLM errors.
func (a *App) MaxRetries() int {
	return a.config.MaxRetries
}

// BaseBackoff returns the base backoff for LLM retries.
func (a *App) BaseBackoff() time.Duration {
	return a.config.BaseBackoff
}

// FilePause returns the pause between dataset files during analysis.
func (a *App) FilePause() time.Duration {
	return a.config.FilePause
}

// Store returns a dataset store over the configured dataset directory.
func (a *App) Store() *dataset.Store {
	return dataset.NewStore(a.config.DatasetDir)
}

// ProviderConfig returns the LLM provider configuration.
func (a *App) ProviderConfig() providers.Config {
	return providers.Config{
		OpenAIAPIKey: a.config.OpenAIAPIKey,
		GeminiAPIKey: a.config.GeminiAPIKey,
		Model:        a.config.Model,
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
