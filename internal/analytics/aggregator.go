package analytics

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	maxLatencySamples = 10000
	maxTrackedQueries = 10000
)

type AggregatedStats struct {
	TotalSearches      int64            `json:"total_searches"`
	TotalRanks         int64            `json:"total_ranks"`
	TotalDocsLoaded    int64            `json:"total_docs_loaded"`
	CacheHits          int64            `json:"cache_hits"`
	CacheMisses        int64            `json:"cache_misses"`
	ZeroResultCount    int64            `json:"zero_result_count"`
	UnimplementedRanks int64            `json:"unimplemented_ranks"`
	RanksByMethod      map[string]int64 `json:"ranks_by_method"`
	AvgLatencyMs       float64          `json:"avg_latency_ms"`
	P50LatencyMs       int64            `json:"p50_latency_ms"`
	P95LatencyMs       int64            `json:"p95_latency_ms"`
	P99LatencyMs       int64            `json:"p99_latency_ms"`
	TopQueries         []QueryCount     `json:"top_queries"`
	ZeroResultQueries  []QueryCount     `json:"zero_result_queries"`
	UntrackedQueries   int64            `json:"untracked_queries"`
	QueriesPerMinute   float64          `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator keeps running query statistics for the analytics endpoint.
// Latency percentiles cover the most recent maxLatencySamples queries. Per
// query counts are kept for at most maxTrackedQueries distinct queries;
// occurrences of queries beyond that are only counted in UntrackedQueries.
type Aggregator struct {
	mu                 sync.RWMutex
	totalSearches      atomic.Int64
	totalRanks         atomic.Int64
	totalDocsLoaded    atomic.Int64
	cacheHits          atomic.Int64
	cacheMisses        atomic.Int64
	zeroResults        atomic.Int64
	unimplementedRanks atomic.Int64
	latencies          []int64
	latencyNext        int
	maxLatencies       int
	maxQueries         int
	untrackedQueries   int64
	queryCounts        map[string]int64
	zeroResultQueries  map[string]int64
	ranksByMethod      map[string]int64
	startTime          time.Time
	logger             *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		maxLatencies:      maxLatencySamples,
		maxQueries:        maxTrackedQueries,
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		ranksByMethod:     make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Record folds one event into the statistics. Unknown event types are
// logged and ignored.
func (a *Aggregator) Record(event any) {
	switch e := event.(type) {
	case QueryEvent:
		a.recordQueryEvent(e)
	case LoadEvent:
		a.totalDocsLoaded.Add(1)
	default:
		a.logger.Warn("ignoring unknown analytics event", "type", fmt.Sprintf("%T", event))
	}
}

func (a *Aggregator) recordQueryEvent(event QueryEvent) {
	switch event.Type {
	case EventRank:
		a.totalRanks.Add(1)
		if !event.MethodImplemented {
			a.unimplementedRanks.Add(1)
		}
	default:
		a.totalSearches.Add(1)
	}

	if event.Type == EventRank && event.Cached {
		if event.CacheHit {
			a.cacheHits.Add(1)
		} else {
			a.cacheMisses.Add(1)
		}
	}

	if event.TotalHits == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	if len(a.latencies) < a.maxLatencies {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.latencyNext] = event.LatencyMs
		a.latencyNext = (a.latencyNext + 1) % a.maxLatencies
	}
	if !a.count(a.queryCounts, event.Query) {
		a.untrackedQueries++
	}
	if event.TotalHits == 0 {
		a.count(a.zeroResultQueries, event.Query)
	}
	if event.Type == EventRank {
		a.ranksByMethod[event.Method]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:      a.totalSearches.Load(),
		TotalRanks:         a.totalRanks.Load(),
		TotalDocsLoaded:    a.totalDocsLoaded.Load(),
		CacheHits:          a.cacheHits.Load(),
		CacheMisses:        a.cacheMisses.Load(),
		ZeroResultCount:    a.zeroResults.Load(),
		UnimplementedRanks: a.unimplementedRanks.Load(),
		RanksByMethod:      make(map[string]int64, len(a.ranksByMethod)),
	}
	for method, count := range a.ranksByMethod {
		stats.RanksByMethod[method] = count
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.UntrackedQueries = a.untrackedQueries
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches+stats.TotalRanks) / elapsed
	}

	return stats
}

// count increments counts[query] unless that would add a key beyond the
// tracking limit. Callers hold a.mu.
func (a *Aggregator) count(counts map[string]int64, query string) bool {
	if _, ok := counts[query]; !ok && len(counts) >= a.maxQueries {
		return false
	}
	counts[query]++
	return true
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query text so ties are stable.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
