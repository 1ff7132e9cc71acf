// Package analyze implements the driftwatch analyze command. It submits
// every changed consecutive snapshot pair to an LLM for alignment and
// change-importance assessment.
package analyze

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/internal/analysis/providers"
	"github.com/mementolab/driftwatch/internal/dataset"
)

// AppContext defines the interface the analyze command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	Store() *dataset.Store
	AnalysisDir() string
	Provider() string
	ProviderConfig() providers.Config
	RPM() int
	MaxRetries() int
	BaseBackoff() time.Duration
	FilePause() time.Duration
}

// NewCommand creates the analyze command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var (
		providerName string
		model        string
		startPair    int
		filePause    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Assess changes between consecutive snapshots with an LLM",
		Long: `Analyze sorts each article's mementos chronologically and, for every
consecutive pair whose text actually differs, asks the configured LLM
to align the two versions sentence by sentence and judge each change.
Judgments are stored one JSON document per pair under the analysis
directory.

Pairs whose texts differ only in case or whitespace are skipped
without an API call.`,
		Example: `  driftwatch analyze
  driftwatch analyze --provider gemini
  driftwatch analyze --start-pair 12 --file-pause 5s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := app.Logger()

			if providerName == "" {
				providerName = app.Provider()
			}
			cfg := app.ProviderConfig()
			if model != "" {
				cfg.Model = model
			}

			provider, err := providers.New(ctx, providerName, cfg)
			if err != nil {
				return err
			}

			analyzer := analysis.NewAnalyzer(provider,
				analysis.WithRPM(app.RPM()),
				analysis.WithMaxRetries(app.MaxRetries()),
				analysis.WithBaseBackoff(app.BaseBackoff()),
				analysis.WithLogger(*logger),
			)

			pause := filePause
			if pause <= 0 {
				pause = app.FilePause()
			}

			runner := analysis.NewRunner(app.Store(), analyzer, app.AnalysisDir(),
				analysis.WithStartPair(startPair),
				analysis.WithFilePause(pause),
				analysis.WithRunnerLogger(*logger),
			)

			logger.Info().
				Str("provider", provider.Name()).
				Int("start_pair", startPair).
				Msg("starting analysis")
			return runner.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "LLM provider: openai, gemini (default openai)")
	cmd.Flags().StringVar(&model, "model", "", "model override for the chosen provider")
	cmd.Flags().IntVar(&startPair, "start-pair", 0, "skip pair indexes below this value")
	cmd.Flags().DurationVar(&filePause, "file-pause", 0, "pause between dataset files (default from config)")

	return cmd
}
