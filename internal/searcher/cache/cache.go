package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docrank/pkg/redis"
)

const keyPrefix = "rank:"

// Store is the key-value backend of the cache. *pkgredis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache caches ranked results keyed by the normalised query, the
// ranking method and the limit.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a QueryCache over store. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, query string, method ranker.Method, limit int) (*executor.RankResult, bool) {
	key := BuildKey(query, method, limit)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.RankResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	// The key covers the preprocessed terms only; report the caller's text.
	result.Query = query
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, query string, method ranker.Method, limit int, result *executor.RankResult) {
	key := BuildKey(query, method, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for the key or runs computeFn once
// for all concurrent callers sharing it. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	method ranker.Method,
	limit int,
	computeFn func() (*executor.RankResult, error),
) (*executor.RankResult, bool, error) {
	if result, ok := c.Get(ctx, query, method, limit); ok {
		return result, true, nil
	}
	key := BuildKey(query, method, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, method, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	// Callers sharing a flight may have sent different text for the same terms.
	result := *val.(*executor.RankResult)
	result.Query = query
	return &result, false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey hashes the preprocessed query together with method and limit.
// Queries that preprocess to the same terms share a key.
func BuildKey(query string, method ranker.Method, limit int) string {
	normalized := strings.Join(tokenizer.Preprocess(query), " ")
	raw := fmt.Sprintf("%s|method=%s|limit=%d", normalized, method, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
