package corpus

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
)

// Failure describes a document that was skipped during loading.
type Failure struct {
	Name string
	Err  error
}

// Report summarises one Load run. SourceErr is set when the source could not
// be opened or listed, in which case nothing was loaded.
type Report struct {
	Loaded    []string
	Failed    []Failure
	SourceErr error
}

func (r *Report) Empty() bool {
	return len(r.Loaded) == 0
}

type Loader struct {
	source  Source
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewLoader returns a Loader for source. m may be nil.
func NewLoader(source Source, m *metrics.Metrics) *Loader {
	return &Loader{
		source:  source,
		metrics: m,
		logger:  slog.Default().With("component", "corpus-loader"),
	}
}

// Load reads every document of the source and hands it to sink. Documents
// that cannot be read or indexed are skipped and recorded in the report.
// The returned error is non-nil only when the source cannot be enumerated
// at all; the report is valid either way.
func (l *Loader) Load(ctx context.Context, sink Sink) (*Report, error) {
	report := &Report{}
	names, err := l.source.Names(ctx)
	if err != nil {
		l.logger.Error("listing corpus failed", "error", err)
		report.SourceErr = fmt.Errorf("%w: %w", apperrors.ErrSourceUnreadable, err)
		return report, report.SourceErr
	}
	for _, name := range names {
		content, err := l.source.Read(ctx, name)
		if err == nil {
			err = sink.Index(name, content)
		}
		if err != nil {
			l.logger.Error("skipping document", "name", name, "error", err)
			report.Failed = append(report.Failed, Failure{Name: name, Err: err})
			if l.metrics != nil {
				l.metrics.CorpusLoadFailures.Inc()
			}
			continue
		}
		report.Loaded = append(report.Loaded, name)
		if l.metrics != nil {
			l.metrics.DocsIndexedTotal.Inc()
		}
	}
	if report.Empty() {
		l.logger.Info("no documents found", "requested", len(names))
	} else {
		l.logger.Info("corpus loaded",
			"loaded", len(report.Loaded),
			"failed", len(report.Failed),
		)
	}
	return report, nil
}
