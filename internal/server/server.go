// Package server provides the HTTP server for browsing retrieved
// mementos, change assessments, and computed metrics.
package server

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mementolab/driftwatch/internal/dataset"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	store       *dataset.Store
	analysisDir string
	logger      *zerolog.Logger
	config      Config
	startTime   time.Time
}

// New creates a new server instance over a dataset store and an
// analysis output directory.
func New(store *dataset.Store, analysisDir string, cfg Config, logger *zerolog.Logger) *Server {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	return &Server{
		store:       store,
		analysisDir: analysisDir,
		logger:      logger,
		config:      cfg,
		startTime:   time.Now(),
	}
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) uptime() time.Duration {
	return time.Since(s.startTime)
}
