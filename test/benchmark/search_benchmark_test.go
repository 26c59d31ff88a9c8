package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
)

var topics = []string{
	"artificial intelligence machine learning neural networks research",
	"roman empire ancient history medieval kingdoms revolution",
	"football sport league players match tournament",
}

func buildDocs(n int) []corpus.Document {
	docs := make([]corpus.Document, n)
	for i := range docs {
		docs[i] = corpus.Document{
			ID:      fmt.Sprintf("doc-%d.txt", i),
			Content: fmt.Sprintf("%s document %d %s", topics[i%len(topics)], i, topics[(i+1)%len(topics)]),
		}
	}
	return docs
}

func buildEngine(b *testing.B, n int) *indexer.Engine {
	b.Helper()
	engine := indexer.NewEngine(nil)
	for _, doc := range buildDocs(n) {
		if err := engine.Index(doc.ID, doc.Content); err != nil {
			b.Fatal(err)
		}
	}
	engine.Seal()
	return engine
}

// BenchmarkRetrieve measures boolean OR retrieval for queries of growing
// width.
func BenchmarkRetrieve(b *testing.B) {
	ex := executor.New(buildEngine(b, 3000), ranker.New(ranker.MethodTFIDF), nil)
	queries := map[string]string{
		"one_term":   "football",
		"two_topics": "football history",
		"no_match":   "zebra quokka",
	}
	for name, query := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				matches := ex.Retrieve(query)
				_ = matches
			}
		})
	}
}

// BenchmarkRank measures scoring and sorting of matched sets of different
// sizes with each implemented method.
func BenchmarkRank(b *testing.B) {
	for _, method := range []ranker.Method{ranker.MethodTFIDF, ranker.MethodBM25} {
		for _, numDocs := range []int{10, 100, 1000} {
			docs := buildDocs(numDocs)
			rk := ranker.New(method)
			b.Run(fmt.Sprintf("%s/docs_%d", method, numDocs), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := rk.Rank("football history intelligence", docs); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkExecutorRank measures the full retrieve-then-rank path.
func BenchmarkExecutorRank(b *testing.B) {
	ex := executor.New(buildEngine(b, 1000), ranker.New(ranker.MethodTFIDF), nil)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ex.Rank(ctx, "roman empire football", 10); err != nil {
			b.Fatal(err)
		}
	}
}
