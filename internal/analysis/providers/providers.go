// Package providers selects an analysis backend by name.
package providers

import (
	"context"
	"fmt"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/internal/analysis/providers/gemini"
	"github.com/mementolab/driftwatch/internal/analysis/providers/openai"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// Config carries the credentials and model choice for any backend.
type Config struct {
	OpenAIAPIKey string
	GeminiAPIKey string
	Model        string // backend default when empty
	BaseURL      string // OpenAI endpoint override, used by tests
}

// Names lists the selectable backends.
func Names() []string {
	return []string{"openai", "gemini"}
}

// New builds the named backend.
func New(ctx context.Context, name string, cfg Config) (analysis.Provider, error) {
	switch name {
	case "openai", "":
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "gemini":
		return gemini.New(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.Model,
		})
	default:
		return nil, errors.NewConfigError("provider",
			fmt.Sprintf("unknown provider %q (want one of %v)", name, Names()), errors.ErrInvalidInput)
	}
}
