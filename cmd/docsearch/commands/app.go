package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/postgres"
)

// app is the loaded, sealed corpus plus the query executor bound to the
// configured ranking method.
type app struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	engine   *indexer.Engine
	executor *executor.Executor
	report   *corpus.Report
	db       *postgres.Client
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	method, err := ranker.ParseMethod(cfg.Ranking.Method)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		metrics: metrics.New(nil),
	}

	a.engine = indexer.NewEngine(a.metrics)
	source, err := a.openSource()
	if err != nil {
		slog.Error("corpus source unavailable", "source", cfg.Corpus.Source, "error", err)
		a.report = &corpus.Report{SourceErr: err}
	} else {
		// A listing failure leaves an empty report carrying SourceErr.
		a.report, _ = corpus.NewLoader(source, a.metrics).Load(ctx, a.engine)
	}
	a.engine.Seal()
	if a.report.Empty() {
		slog.Warn("corpus is empty, every query will return no documents",
			"source", cfg.Corpus.Source,
			"failed", len(a.report.Failed),
			"source_error", a.report.SourceErr,
		)
	}

	a.executor = executor.New(a.engine, ranker.New(method), a.metrics)
	return a, nil
}

func (a *app) openSource() (corpus.Source, error) {
	switch a.cfg.Corpus.Source {
	case "postgres":
		db, err := postgres.New(a.cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("%w: connecting to corpus database: %w", apperrors.ErrSourceUnreadable, err)
		}
		a.db = db
		return corpus.NewPostgresSource(db.DB, a.cfg.Corpus.Table), nil
	case "files":
		return corpus.NewFileSource(a.cfg.Corpus.Dir, a.cfg.Corpus.Files), nil
	default:
		return nil, fmt.Errorf("%w: unknown corpus source %q", apperrors.ErrInvalidInput, a.cfg.Corpus.Source)
	}
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Error("closing corpus database", "error", err)
		}
	}
}
