package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mementolab/driftwatch/internal/analysis"
	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/metrics"
	"github.com/mementolab/driftwatch/internal/server/response"
	"github.com/mementolab/driftwatch/pkg/errors"
)

// Article summarizes one tracked article for API responses.
type Article struct {
	Slug             string `json:"slug"`
	Title            string `json:"title"`
	Mementos         int    `json:"mementos"`
	ConsecutivePairs int    `json:"consecutive_pairs"`
	AnalyzedPairs    int    `json:"analyzed_pairs"`
	FirstCapture     string `json:"first_capture,omitempty"`
	LastCapture      string `json:"last_capture,omitempty"`
}

// PairSummary lists one analyzed snapshot pair.
type PairSummary struct {
	PairIndex    int    `json:"pair_index"`
	TimestampOld string `json:"timestamp_old,omitempty"`
	TimestampNew string `json:"timestamp_new,omitempty"`
	Units        int    `json:"units"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":         "healthy",
		"service":        "driftwatch-api",
		"version":        "v1",
		"uptime_seconds": int(s.uptime().Seconds()),
	})
}

func (s *Server) handleListArticles(w http.ResponseWriter, _ *http.Request) {
	titles, err := s.store.List()
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	articles := make([]Article, 0, len(titles))
	for _, title := range titles {
		article, err := s.articleSummary(title)
		if err != nil {
			s.logger.Warn().Str("title", title).Err(err).Msg("skipping unreadable dataset")
			continue
		}
		articles = append(articles, article)
	}
	response.OK(w, articles)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, _ *http.Request, slug string) {
	article, err := s.findArticle(slug)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, article)
}

func (s *Server) handleArticleMetrics(w http.ResponseWriter, _ *http.Request, slug string) {
	if _, err := s.findArticle(slug); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	path := filepath.Join(s.analysisDir, slug, metrics.MetricsDirName, metrics.MetricsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			response.NotFound(w, "metrics not computed for article", slug)
			return
		}
		response.ErrorFromType(w, errors.WrapIO("read metrics file", path, err))
		return
	}

	var report metrics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		response.ErrorFromType(w, errors.NewParseError("json", path, "decode metrics report", err))
		return
	}
	response.OK(w, report)
}

func (s *Server) handleListPairs(w http.ResponseWriter, _ *http.Request, slug string) {
	if _, err := s.findArticle(slug); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	docs, err := s.loadPairDocs(slug)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	pairs := make([]PairSummary, 0, len(docs))
	for _, doc := range docs {
		pairs = append(pairs, PairSummary{
			PairIndex:    doc.PairIndex,
			TimestampOld: doc.MetadataOld.WARCDate,
			TimestampNew: doc.MetadataNew.WARCDate,
			Units:        len(doc.Items),
		})
	}
	response.OK(w, pairs)
}

func (s *Server) handleGetPair(w http.ResponseWriter, _ *http.Request, slug, indexStr string) {
	if _, err := s.findArticle(slug); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	pairIndex, err := strconv.Atoi(indexStr)
	if err != nil || pairIndex < 0 {
		response.BadRequest(w, "invalid pair index", indexStr)
		return
	}

	path := filepath.Join(s.analysisDir, slug, pairFileName(pairIndex))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			response.NotFound(w, "pair not analyzed", indexStr)
			return
		}
		response.ErrorFromType(w, errors.WrapIO("read pair file", path, err))
		return
	}

	var doc analysis.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		response.ErrorFromType(w, errors.NewParseError("json", path, "decode pair document", err))
		return
	}
	response.OK(w, doc)
}

// articleSummary builds the API view of one dataset file.
func (s *Server) articleSummary(title string) (Article, error) {
	mementos, err := s.store.Load(title)
	if err != nil {
		return Article{}, err
	}
	dataset.SortByWARCDate(mementos)

	article := Article{
		Slug:     analysis.Slug(title, mementos),
		Title:    title,
		Mementos: len(mementos),
	}
	if len(mementos) > 1 {
		article.ConsecutivePairs = len(mementos) - 1
	}
	if len(mementos) > 0 {
		article.FirstCapture = mementos[0].Metadata.WARCDate
		article.LastCapture = mementos[len(mementos)-1].Metadata.WARCDate
	}
	article.AnalyzedPairs = s.countAnalyzedPairs(article.Slug)
	return article, nil
}

// findArticle resolves a slug to its dataset-backed article.
func (s *Server) findArticle(slug string) (Article, error) {
	titles, err := s.store.List()
	if err != nil {
		return Article{}, err
	}
	for _, title := range titles {
		article, err := s.articleSummary(title)
		if err != nil {
			continue
		}
		if article.Slug == slug {
			return article, nil
		}
	}
	return Article{}, errors.NewNotFoundError("article", slug)
}

// loadPairDocs reads every pair document for a slug, sorted by index.
func (s *Server) loadPairDocs(slug string) ([]analysis.Document, error) {
	articleDir := filepath.Join(s.analysisDir, slug)
	entries, err := os.ReadDir(articleDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read analysis directory", articleDir, err)
	}

	var docs []analysis.Document
	for _, e := range entries {
		if e.IsDir() || !isPairFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(articleDir, e.Name()))
		if err != nil {
			continue
		}
		var doc analysis.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.Warn().Str("file", e.Name()).Err(err).Msg("skipping malformed pair file")
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].PairIndex < docs[j].PairIndex })
	return docs, nil
}

func (s *Server) countAnalyzedPairs(slug string) int {
	entries, err := os.ReadDir(filepath.Join(s.analysisDir, slug))
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && isPairFile(e.Name()) {
			count++
		}
	}
	return count
}

func isPairFile(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
	return err == nil
}

func pairFileName(pairIndex int) string {
	return fmt.Sprintf("%04d.json", pairIndex)
}
