package server

import (
	"net/http"
	"strings"

	"github.com/mementolab/driftwatch/internal/server/middleware"
	"github.com/mementolab/driftwatch/internal/server/response"
)

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	prefix := s.config.PathPrefix

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health endpoints
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc(prefix+"/health", s.handleHealth)

	// Article endpoints
	mux.HandleFunc(prefix+"/articles", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		s.handleListArticles(w, r)
	})

	mux.HandleFunc(prefix+"/articles/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			response.MethodNotAllowed(w, r.Method)
			return
		}

		parts := splitPath(r.URL.Path[len(prefix+"/articles/"):])
		if len(parts) == 0 {
			response.BadRequest(w, "Article slug required", "")
			return
		}
		slug := parts[0]

		switch {
		case len(parts) == 1:
			s.handleGetArticle(w, r, slug)
		case len(parts) == 2 && parts[1] == "metrics":
			s.handleArticleMetrics(w, r, slug)
		case len(parts) == 2 && parts[1] == "pairs":
			s.handleListPairs(w, r, slug)
		case len(parts) == 3 && parts[1] == "pairs":
			s.handleGetPair(w, r, slug, parts[2])
		default:
			response.NotFound(w, "Not found", "")
		}
	})

	// Raw file access for dataset files and rendered charts
	mux.Handle("/files/dataset/",
		http.StripPrefix("/files/dataset/", http.FileServer(http.Dir(s.store.Dir()))))
	mux.Handle("/files/analysis/",
		http.StripPrefix("/files/analysis/", http.FileServer(http.Dir(s.analysisDir))))
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
			corsConfig.AllowAll = false
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	// Logging and recovery are always enabled
	handler = middleware.Logger(s.logger)(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// splitPath splits a URL path into parts, removing empty strings.
func splitPath(path string) []string {
	parts := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
