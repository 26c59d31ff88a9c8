package executor

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/tracing"
)

// SearchResult is the outcome of boolean retrieval.
type SearchResult struct {
	Query     string            `json:"query"`
	Terms     []string          `json:"terms"`
	TotalHits int               `json:"total_hits"`
	Documents []corpus.Document `json:"documents"`
	TermStats map[string]int    `json:"term_stats"`
}

// RankResult is the outcome of retrieval followed by ranking.
// MethodImplemented is false when the configured method has no algorithm,
// which distinguishes that case from a query without matches.
type RankResult struct {
	Query             string             `json:"query"`
	Terms             []string           `json:"terms"`
	Method            ranker.Method      `json:"method"`
	MethodImplemented bool               `json:"method_implemented"`
	TotalHits         int                `json:"total_hits"`
	Results           []ranker.ScoredDoc `json:"results"`
}

type Executor struct {
	engine  *indexer.Engine
	ranker  *ranker.Ranker
	metrics *metrics.Metrics
}

// New returns an Executor over engine. m may be nil.
func New(engine *indexer.Engine, rk *ranker.Ranker, m *metrics.Metrics) *Executor {
	return &Executor{
		engine:  engine,
		ranker:  rk,
		metrics: m,
	}
}

func (e *Executor) Method() ranker.Method {
	return e.ranker.Method()
}

// Retrieve returns every document containing at least one query term, in
// corpus load order. Query terms missing from the vocabulary are ignored.
func (e *Executor) Retrieve(query string) MatchSet {
	matches, _, _ := e.retrieve(query)
	return matches
}

// Search runs boolean retrieval for query.
func (e *Executor) Search(ctx context.Context, query string) *SearchResult {
	start := time.Now()
	matches, terms, termStats := e.retrieve(query)
	result := &SearchResult{
		Query:     query,
		Terms:     terms,
		TotalHits: matches.Len(),
		Documents: matches.Documents(),
		TermStats: termStats,
	}
	e.observe("retrieve", resultType(result.TotalHits, true), result.TotalHits, start)
	logger.FromContext(ctx).Info("query executed",
		"component", "query-executor",
		"query", query,
		"terms", terms,
		"matches", result.TotalHits,
	)
	return result
}

// Rank retrieves the documents matching query and orders them with the
// bound ranking method. A positive limit truncates the ranked list;
// TotalHits always reports the full match count.
func (e *Executor) Rank(ctx context.Context, query string, limit int) (*RankResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	_, retrieveSpan := tracing.Start(ctx, "retrieve", "")
	matches, terms, _ := e.retrieve(query)
	retrieveSpan.SetAttr("terms", len(terms))
	retrieveSpan.SetAttr("matches", matches.Len())
	retrieveSpan.End()

	result := &RankResult{
		Query:             query,
		Terms:             terms,
		Method:            e.ranker.Method(),
		MethodImplemented: e.ranker.Method().Implemented(),
		TotalHits:         matches.Len(),
		Results:           []ranker.ScoredDoc{},
	}
	if matches.Len() > 0 {
		_, scoreSpan := tracing.Start(ctx, "score", "")
		scoreSpan.SetAttr("method", result.Method.String())
		ranked, err := e.ranker.Rank(query, matches.Documents())
		scoreSpan.End()
		switch {
		case errors.Is(err, apperrors.ErrMethodUnimplemented):
			log.Warn("ranking method has no implementation, returning no results",
				"method", result.Method,
				"matches", matches.Len(),
			)
		case err != nil:
			return nil, err
		default:
			result.Results = ranked
		}
	}
	if limit > 0 && len(result.Results) > limit {
		result.Results = result.Results[:limit]
	}

	e.observe("rank", resultType(len(result.Results), result.MethodImplemented), len(result.Results), start)
	log.Info("query ranked",
		"component", "query-executor",
		"query", query,
		"method", result.Method,
		"matches", result.TotalHits,
		"results", len(result.Results),
	)
	return result, nil
}

func (e *Executor) retrieve(query string) (MatchSet, []string, map[string]int) {
	terms := tokenizer.Preprocess(query)
	termStats := make(map[string]int)
	idx := e.engine.InvertedIndex()

	candidates := make(map[string]struct{})
	for _, term := range terms {
		docs := idx.DocSet(term)
		if len(docs) == 0 {
			continue
		}
		termStats[term] = len(docs)
		for docID := range docs {
			candidates[docID] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		return MatchSet{}, terms, termStats
	}

	ids := make([]string, 0, len(candidates))
	for docID := range candidates {
		ids = append(ids, docID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return e.engine.Position(ids[i]) < e.engine.Position(ids[j])
	})
	docs := make([]corpus.Document, 0, len(ids))
	for _, docID := range ids {
		if doc, ok := e.engine.Document(docID); ok {
			docs = append(docs, doc)
		}
	}
	return MatchSet{docs: docs}, terms, termStats
}

func (e *Executor) observe(operation, result string, count int, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(operation, result).Inc()
	e.metrics.SearchLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	e.metrics.SearchResultsCount.WithLabelValues(operation).Observe(float64(count))
}

func resultType(count int, implemented bool) string {
	switch {
	case !implemented:
		return "unimplemented"
	case count == 0:
		return "zero_result"
	default:
		return "hit"
	}
}
