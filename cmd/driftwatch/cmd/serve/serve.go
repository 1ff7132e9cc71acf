// Package serve implements the driftwatch serve command: a small HTTP
// API plus static file access for browsing retrieved mementos, change
// assessments, metrics, and rendered charts.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/server"
)

// AppContext defines the interface the serve command needs from the app.
type AppContext interface {
	Logger() *zerolog.Logger
	Store() *dataset.Store
	AnalysisDir() string
}

// NewCommand creates the serve command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	cfg := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results viewer API",
		Long: `Serve starts an HTTP server over the dataset and analysis
directories:

  GET /healthz                                  liveness
  GET /api/v1/articles                          tracked articles with counts
  GET /api/v1/articles/{slug}                   one article
  GET /api/v1/articles/{slug}/metrics           aggregated metrics
  GET /api/v1/articles/{slug}/pairs             analyzed pair listing
  GET /api/v1/articles/{slug}/pairs/{index}     one pair document
  GET /files/dataset/..., /files/analysis/...   raw files and charts

The server shuts down gracefully on SIGINT/SIGTERM.`,
		Example: `  driftwatch serve
  driftwatch serve --port 3000 --cors`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := app.Logger()
			logger.Info().
				Str("host", cfg.Host).
				Int("port", cfg.Port).
				Str("prefix", cfg.PathPrefix).
				Bool("cors", cfg.CORSEnabled).
				Msg("starting results viewer")

			srv := server.New(app.Store(), app.AnalysisDir(), cfg, logger)
			httpServer := &http.Server{
				Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
				IdleTimeout:  cfg.IdleTimeout,
			}
			return runWithGracefulShutdown(cmd.Context(), httpServer, logger)
		},
	}

	cmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "server port")
	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "bind address")
	cmd.Flags().StringVar(&cfg.PathPrefix, "prefix", cfg.PathPrefix, "API path prefix")
	cmd.Flags().BoolVar(&cfg.CORSEnabled, "cors", false, "enable CORS")
	cmd.Flags().StringSliceVar(&cfg.CORSOrigins, "cors-origins", nil, "allowed CORS origins (default all when --cors)")
	cmd.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP read timeout")
	cmd.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP write timeout")
	cmd.Flags().DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// runWithGracefulShutdown serves until the context is cancelled (SIGINT or
// SIGTERM via the root command's signal-aware context), then drains
// outstanding requests.
func runWithGracefulShutdown(ctx context.Context, httpServer *http.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		logger.Info().Msg("server stopped gracefully")
		return nil
	}
}
