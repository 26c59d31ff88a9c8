package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/tracing"
)

type QueryExecutor interface {
	Search(ctx context.Context, query string) *executor.SearchResult
	Rank(ctx context.Context, query string, limit int) (*executor.RankResult, error)
	Method() ranker.Method
}

// Corpus exposes the read-only views of the loaded documents.
type Corpus interface {
	Document(docID string) (corpus.Document, bool)
	Vocabulary() []string
	GetTotalDocs() int
}

type Handler struct {
	executor     QueryExecutor
	corpus       Corpus
	cache        *cache.QueryCache
	collector    *analytics.Collector
	aggregator   *analytics.Aggregator
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// Options carries the optional collaborators of a Handler. Nil fields
// disable the matching feature.
type Options struct {
	Cache        *cache.QueryCache
	Collector    *analytics.Collector
	Aggregator   *analytics.Aggregator
	DefaultLimit int
	MaxResults   int
}

func New(exec QueryExecutor, docs Corpus, opts Options) *Handler {
	return &Handler{
		executor:     exec,
		corpus:       docs,
		cache:        opts.Cache,
		collector:    opts.Collector,
		aggregator:   opts.Aggregator,
		defaultLimit: opts.DefaultLimit,
		maxResults:   opts.MaxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/rank", h.Rank)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Document)
	mux.HandleFunc("GET /api/v1/vocabulary", h.Vocabulary)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", h.Analytics)
}

// Search answers boolean retrieval: every document containing a query term.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	query, ok := h.queryParam(w, r)
	if !ok {
		return
	}

	result := h.executor.Search(ctx, query)
	h.track(ctx, analytics.QueryEvent{
		Type:              analytics.EventSearch,
		Query:             query,
		Terms:             result.Terms,
		MethodImplemented: true,
		TotalHits:         result.TotalHits,
		Returned:          len(result.Documents),
		LatencyMs:         time.Since(start).Milliseconds(),
	})
	h.writeJSON(w, http.StatusOK, result)
}

// Rank retrieves and ranks the documents matching q with the configured
// method, serving from the cache when one is configured.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "rank", middleware.GetRequestID(r.Context()))
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(ctx, log)
	}()

	query, ok := h.queryParam(w, r)
	if !ok {
		return
	}
	limit, ok := h.limitParam(w, r)
	if !ok {
		return
	}

	var result *executor.RankResult
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, h.executor.Method(), limit, func() (*executor.RankResult, error) {
			return h.executor.Rank(ctx, query, limit)
		})
	} else {
		result, err = h.executor.Rank(ctx, query, limit)
	}
	if err != nil {
		log.Error("rank failed", "query", query, "error", err)
		h.writeError(w, err)
		return
	}

	span.SetAttr("cache_hit", cacheHit)
	latencyMs := time.Since(start).Milliseconds()
	log.Info("rank completed",
		"query", query,
		"method", result.Method,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	h.track(ctx, analytics.QueryEvent{
		Type:              analytics.EventRank,
		Query:             query,
		Terms:             result.Terms,
		Method:            result.Method.String(),
		MethodImplemented: result.MethodImplemented,
		TotalHits:         result.TotalHits,
		Returned:          len(result.Results),
		LatencyMs:         latencyMs,
		Cached:            h.cache != nil,
		CacheHit:          cacheHit,
	})
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok := h.corpus.Document(id)
	if !ok {
		h.writeError(w, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "no document %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	terms := h.corpus.Vocabulary()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"documents": h.corpus.GetTotalDocs(),
		"count":     len(terms),
		"terms":     terms,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	if h.aggregator == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.aggregator.Stats())
}

func (h *Handler) queryParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	values := r.URL.Query()
	if !values.Has("q") {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return "", false
	}
	return values.Get("q"), true
}

func (h *Handler) limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := h.defaultLimit
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return limit, true
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed < 1 {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer"))
		return 0, false
	}
	if h.maxResults > 0 && parsed > h.maxResults {
		parsed = h.maxResults
	}
	return parsed, true
}

func (h *Handler) track(ctx context.Context, event analytics.QueryEvent) {
	if h.collector == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = middleware.GetRequestID(ctx)
	h.collector.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
