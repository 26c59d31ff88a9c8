package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.DocsIndexedTotal.Add(3)
	m.SearchQueriesTotal.WithLabelValues("rank", "hit").Inc()

	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 3 {
		t.Errorf("docs_indexed_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("rank", "hit")); got != 1 {
		t.Errorf("search_queries_total = %v, want 1", got)
	}
}

func TestNewTwiceWithPrivateRegistries(t *testing.T) {
	New(nil)
	New(nil)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(nil)
	m.VocabularySize.Set(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "vocabulary_size 42") {
		t.Errorf("metrics output missing vocabulary_size:\n%s", body)
	}
}
