// Package benchmark contains Go benchmarks for preprocessing, the inverted
// index and the retrieval and ranking pipeline.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
)

var benchTerms = tokenizer.Preprocess("artificial intelligence research shapes the history of modern sport analytics and football tactics")

// BenchmarkInvertedIndexAdd measures per-document insert throughput.
func BenchmarkInvertedIndexAdd(b *testing.B) {
	idx := index.NewInvertedIndex()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Add(fmt.Sprintf("doc-%d.txt", i), benchTerms)
	}
}

// BenchmarkInvertedIndexDocSet measures single-term lookup over 10 000
// documents.
func BenchmarkInvertedIndexDocSet(b *testing.B) {
	idx := index.NewInvertedIndex()
	for i := 0; i < 10000; i++ {
		idx.Add(fmt.Sprintf("doc-%d.txt", i), benchTerms)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		docs := idx.DocSet("history")
		_ = docs
	}
}

// BenchmarkInvertedIndexLookupParallel measures concurrent read throughput.
func BenchmarkInvertedIndexLookupParallel(b *testing.B) {
	idx := index.NewInvertedIndex()
	for i := 0; i < 10000; i++ {
		idx.Add(fmt.Sprintf("doc-%d.txt", i), benchTerms)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			postings := idx.Lookup("football")
			_ = postings
		}
	})
}

// BenchmarkEngineIndex measures preprocessing plus indexing of one document.
func BenchmarkEngineIndex(b *testing.B) {
	engine := indexer.NewEngine(nil)
	content := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := engine.Index(fmt.Sprintf("doc-%d.txt", i), content); err != nil {
			b.Fatal(err)
		}
	}
}
