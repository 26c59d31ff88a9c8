package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/ratelimit"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docrank/pkg/redis"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query API",
		Long: `Load the corpus, seal the index and serve queries over HTTP until
interrupted.

Endpoints:
  GET  /api/v1/search?q=          boolean retrieval
  GET  /api/v1/rank?q=&limit=     ranked retrieval
  GET  /api/v1/documents/{id}     document content
  GET  /api/v1/vocabulary         index terms
  GET  /api/v1/cache/stats        ranking cache counters
  POST /api/v1/cache/invalidate   drop cached rankings
  GET  /api/v1/analytics          query statistics
  GET  /health/live, /health/ready, /metrics

Redis caching and Kafka event publishing are enabled when redis.addr and
kafka.brokers are configured. server.rateLimit caps API requests per client
per minute.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides server.port")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	slog.Info("starting query service",
		"port", cfg.Server.Port,
		"method", a.executor.Method(),
		"documents", a.engine.GetTotalDocs(),
		"vocabulary", len(a.engine.Vocabulary()),
	)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, rank caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, a.metrics)
			slog.Info("rank cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var publisher analytics.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
		slog.Info("analytics publishing enabled", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}
	aggregator := analytics.NewAggregator()
	collector := analytics.NewCollector(aggregator, publisher, 10000)
	collector.Start(ctx)
	defer collector.Close()
	for _, name := range a.report.Loaded {
		doc, _ := a.engine.Document(name)
		collector.Track(analytics.LoadEvent{
			Type:       analytics.EventLoad,
			DocumentID: name,
			TermCount:  len(tokenizer.Preprocess(doc.Content)),
			SizeBytes:  len(doc.Content),
			Timestamp:  time.Now().UTC(),
		})
	}

	checker := newChecker(a, redisClient)

	h := handler.New(a.executor, a.engine, handler.Options{
		Cache:        queryCache,
		Collector:    collector,
		Aggregator:   aggregator,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
	})
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", a.metrics.Handler())

	if cfg.Metrics.Enabled {
		shutdownMetrics := a.metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(a.metrics)(chain)
	if cfg.Server.RateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute)
		go limiter.Run(ctx, 5*time.Minute)
		chain = middleware.RateLimit(limiter)(chain)
		slog.Info("rate limiting enabled", "requests_per_minute", cfg.Server.RateLimit)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("query service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	<-shutdownDone
	slog.Info("query service stopped")
	return nil
}

func newChecker(a *app, redisClient *pkgredis.Client) *health.Checker {
	checker := health.NewChecker()
	checker.Register("index_engine", func(ctx context.Context) health.ComponentHealth {
		switch {
		case !a.engine.Sealed():
			return health.ComponentHealth{Status: health.StatusDown, Message: "index not sealed"}
		case a.report.SourceErr != nil:
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "corpus source unreadable: " + a.report.SourceErr.Error()}
		case a.engine.GetTotalDocs() == 0:
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "corpus is empty"}
		default:
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents, %d terms", a.engine.GetTotalDocs(), a.engine.InvertedIndex().TermCount()),
			}
		}
	})
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, false))
	} else {
		checker.Register("redis", health.Disabled("not configured"))
	}
	if a.db != nil {
		checker.Register("postgres", health.PingCheck(a.db.Ping, false))
	}
	return checker
}
