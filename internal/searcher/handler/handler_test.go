package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
)

func newTestServer(t *testing.T, method ranker.Method, opts Options) *http.ServeMux {
	t.Helper()
	e := indexer.NewEngine(nil)
	docs := map[string]string{
		"AI1.txt":     "Artificial intelligence is fascinating",
		"sports1.txt": "Football is a popular sport",
	}
	for _, id := range []string{"AI1.txt", "sports1.txt"} {
		if err := e.Index(id, docs[id]); err != nil {
			t.Fatal(err)
		}
	}
	e.Seal()
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = 100
	}
	h := New(executor.New(e, ranker.New(method), nil), e, opts)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestRank(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	rec := get(t, mux, "/api/v1/rank?q=intelligence+sport")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	result := decode[executor.RankResult](t, rec)
	if result.TotalHits != 2 || len(result.Results) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Method != ranker.MethodTFIDF || !result.MethodImplemented {
		t.Errorf("unexpected method fields %+v", result)
	}
	if result.Results[0].DocID != "AI1.txt" {
		t.Errorf("expected AI1.txt first, got %+v", result.Results)
	}
}

func TestRankLimitClamped(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{MaxResults: 1})
	result := decode[executor.RankResult](t, get(t, mux, "/api/v1/rank?q=intelligence+sport&limit=50"))
	if len(result.Results) != 1 || result.TotalHits != 2 {
		t.Errorf("expected 1 of 2 results, got %+v", result)
	}
}

func TestRankBadRequests(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	for _, target := range []string{
		"/api/v1/rank",
		"/api/v1/rank?q=sport&limit=0",
		"/api/v1/rank?q=sport&limit=abc",
	} {
		if rec := get(t, mux, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestRankEmptyQuery(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	for _, target := range []string{"/api/v1/rank?q=", "/api/v1/rank?q=the+is+a"} {
		rec := get(t, mux, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		result := decode[executor.RankResult](t, rec)
		if result.TotalHits != 0 || len(result.Results) != 0 {
			t.Errorf("%s: expected empty result, got %+v", target, result)
		}
	}
}

func TestRankOtherMethod(t *testing.T) {
	mux := newTestServer(t, ranker.MethodOther, Options{})
	rec := get(t, mux, "/api/v1/rank?q=intelligence+sport")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	result := decode[executor.RankResult](t, rec)
	if result.MethodImplemented || len(result.Results) != 0 || result.TotalHits != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSearch(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	rec := get(t, mux, "/api/v1/search?q=football")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	result := decode[executor.SearchResult](t, rec)
	if result.TotalHits != 1 || result.Documents[0].ID != "sports1.txt" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Documents[0].Content != "Football is a popular sport" {
		t.Errorf("expected document content, got %q", result.Documents[0].Content)
	}
}

func TestDocument(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	if rec := get(t, mux, "/api/v1/documents/AI1.txt"); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := get(t, mux, "/api/v1/documents/missing.txt"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestVocabulary(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	body := decode[struct {
		Documents int      `json:"documents"`
		Count     int      `json:"count"`
		Terms     []string `json:"terms"`
	}](t, get(t, mux, "/api/v1/vocabulary"))
	if body.Documents != 2 || body.Count != 6 || body.Terms[0] != "artificial" {
		t.Errorf("unexpected vocabulary %+v", body)
	}
}

func TestCacheDisabled(t *testing.T) {
	mux := newTestServer(t, ranker.MethodTFIDF, Options{})
	if rec := get(t, mux, "/api/v1/cache/stats"); rec.Code != http.StatusOK {
		t.Errorf("stats status = %d", rec.Code)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("invalidate status = %d, want 503", rec.Code)
	}
}

func TestAnalyticsTracked(t *testing.T) {
	agg := analytics.NewAggregator()
	collector := analytics.NewCollector(agg, nil, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	collector.Start(ctx)

	mux := newTestServer(t, ranker.MethodTFIDF, Options{Collector: collector, Aggregator: agg})
	get(t, mux, "/api/v1/rank?q=sport")
	get(t, mux, "/api/v1/search?q=zebra")
	collector.Close()

	stats := decode[analytics.AggregatedStats](t, get(t, mux, "/api/v1/analytics"))
	if stats.TotalRanks != 1 || stats.TotalSearches != 1 || stats.ZeroResultCount != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.RanksByMethod["TF-IDF"] != 1 {
		t.Errorf("ranks by method = %v", stats.RanksByMethod)
	}
}
