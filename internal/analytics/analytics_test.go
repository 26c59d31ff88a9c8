package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/kafka"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	agg.Record(QueryEvent{Type: EventRank, Query: "sport", Method: "TF-IDF", MethodImplemented: true, TotalHits: 3, LatencyMs: 10, Cached: true})
	agg.Record(QueryEvent{Type: EventRank, Query: "sport", Method: "TF-IDF", MethodImplemented: true, TotalHits: 3, LatencyMs: 20, Cached: true, CacheHit: true})
	agg.Record(QueryEvent{Type: EventRank, Query: "sport", Method: "Other", TotalHits: 3, LatencyMs: 30})
	agg.Record(QueryEvent{Type: EventSearch, Query: "zebra", TotalHits: 0, LatencyMs: 40})
	agg.Record(LoadEvent{Type: EventLoad, DocumentID: "AI1.txt"})
	agg.Record("unknown")

	stats := agg.Stats()
	if stats.TotalRanks != 3 || stats.TotalSearches != 1 || stats.TotalDocsLoaded != 1 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("cache hits=%d misses=%d", stats.CacheHits, stats.CacheMisses)
	}
	if stats.UnimplementedRanks != 1 {
		t.Errorf("unimplemented ranks = %d", stats.UnimplementedRanks)
	}
	if stats.RanksByMethod["TF-IDF"] != 2 || stats.RanksByMethod["Other"] != 1 {
		t.Errorf("ranks by method = %v", stats.RanksByMethod)
	}
	if stats.ZeroResultCount != 1 || len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "zebra" {
		t.Errorf("unexpected zero-result stats %+v", stats)
	}
	if stats.TopQueries[0] != (QueryCount{Query: "sport", Count: 3}) {
		t.Errorf("top query = %+v", stats.TopQueries[0])
	}
	if stats.AvgLatencyMs != 25 || stats.P50LatencyMs != 30 || stats.P99LatencyMs != 40 {
		t.Errorf("latencies avg=%v p50=%d p99=%d", stats.AvgLatencyMs, stats.P50LatencyMs, stats.P99LatencyMs)
	}
}

func TestAggregatorCacheCountsOnlyCachedRanks(t *testing.T) {
	agg := NewAggregator()
	agg.Record(QueryEvent{Type: EventSearch, Query: "sport", TotalHits: 1})
	agg.Record(QueryEvent{Type: EventRank, Query: "sport", MethodImplemented: true, TotalHits: 1})
	agg.Record(QueryEvent{Type: EventRank, Query: "sport", MethodImplemented: true, TotalHits: 1, Cached: true})

	stats := agg.Stats()
	if stats.CacheHits != 0 || stats.CacheMisses != 1 {
		t.Errorf("cache hits=%d misses=%d, want 0 and 1", stats.CacheHits, stats.CacheMisses)
	}
}

func TestAggregatorBoundsMemory(t *testing.T) {
	agg := NewAggregator()
	agg.maxLatencies = 3
	agg.maxQueries = 2

	for i, q := range []string{"a", "b", "c", "d", "a"} {
		agg.Record(QueryEvent{Type: EventSearch, Query: q, TotalHits: 0, LatencyMs: int64(i + 1)})
	}

	if len(agg.latencies) != 3 {
		t.Fatalf("kept %d latency samples, want 3", len(agg.latencies))
	}
	if len(agg.queryCounts) != 2 || len(agg.zeroResultQueries) != 2 {
		t.Errorf("tracked %d queries and %d zero-result queries, want 2 each", len(agg.queryCounts), len(agg.zeroResultQueries))
	}

	stats := agg.Stats()
	// Samples 4 and 5 overwrite 1 and 2, leaving {3, 4, 5}.
	if stats.AvgLatencyMs != 4 {
		t.Errorf("avg latency = %v, want 4", stats.AvgLatencyMs)
	}
	if stats.UntrackedQueries != 2 {
		t.Errorf("untracked queries = %d, want 2", stats.UntrackedQueries)
	}
	if stats.TopQueries[0] != (QueryCount{Query: "a", Count: 2}) {
		t.Errorf("top query = %+v", stats.TopQueries[0])
	}
}

func TestAggregatorEmpty(t *testing.T) {
	stats := NewAggregator().Stats()
	if stats.TotalSearches != 0 || stats.AvgLatencyMs != 0 || len(stats.TopQueries) != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestTopNTieBreak(t *testing.T) {
	got := topN(map[string]int64{"b": 2, "a": 2, "c": 5}, 2)
	want := []QueryCount{{"c", 5}, {"a", 2}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("topN = %v, want %v", got, want)
	}
}

func TestCollectorPublishesAndAggregates(t *testing.T) {
	agg := NewAggregator()
	pub := &recordingPublisher{}
	c := NewCollector(agg, pub, 16)
	c.Start(context.Background())

	c.Track(QueryEvent{Type: EventRank, Query: "sport", MethodImplemented: true, TotalHits: 1})
	c.Track(LoadEvent{Type: EventLoad, DocumentID: "sports1.txt"})
	c.Close()

	if pub.count() != 2 {
		t.Errorf("published %d events, want 2", pub.count())
	}
	if pub.events[0].Key != "rank" || pub.events[1].Key != "sports1.txt" {
		t.Errorf("unexpected keys %q, %q", pub.events[0].Key, pub.events[1].Key)
	}
	stats := agg.Stats()
	if stats.TotalRanks != 1 || stats.TotalDocsLoaded != 1 {
		t.Errorf("aggregator not fed: %+v", stats)
	}
}

func TestCollectorWithoutPublisher(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, nil, 4)
	c.Start(context.Background())
	c.Track(QueryEvent{Type: EventSearch, Query: "history", TotalHits: 2})
	c.Close()
	if agg.Stats().TotalSearches != 1 {
		t.Error("expected event to reach the aggregator")
	}
}

func TestCollectorPublishErrorStillAggregates(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, &recordingPublisher{err: errors.New("broker down")}, 4)
	c.Start(context.Background())
	c.Track(QueryEvent{Type: EventSearch, Query: "history", TotalHits: 2})
	c.Close()
	if agg.Stats().TotalSearches != 1 {
		t.Error("publish failure should not lose the local record")
	}
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	agg := NewAggregator()
	pub := &recordingPublisher{}
	c := NewCollector(agg, pub, 8)
	for i := 0; i < 3; i++ {
		c.Track(QueryEvent{Type: EventSearch, Query: "q"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
	if agg.Stats().TotalSearches != 3 {
		t.Errorf("expected 3 recorded events, got %d", agg.Stats().TotalSearches)
	}
	if pub.count() != 3 {
		t.Errorf("expected 3 published events, got %d", pub.count())
	}
}

func TestCollectorTrackAfterClose(t *testing.T) {
	agg := NewAggregator()
	c := NewCollector(agg, nil, 4)
	c.Start(context.Background())
	c.Close()
	c.Track(QueryEvent{Type: EventSearch, Query: "late"})
	c.Close()
	if agg.Stats().TotalSearches != 0 {
		t.Error("event tracked after Close should be dropped")
	}
}
