// Package ranker orders a set of retrieved documents by similarity to a
// query. Statistics such as document frequency are computed over the
// documents passed to Rank, not over the whole corpus, so a document's
// score for a query depends on which other documents were retrieved with it.
package ranker

import (
	"fmt"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
)

const (
	k1 = 1.2
	b  = 0.75
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Ranker scores documents with the Method it was constructed with.
type Ranker struct {
	method Method
}

func New(method Method) *Ranker {
	return &Ranker{method: method}
}

func (r *Ranker) Method() Method {
	return r.method
}

// Rank scores every matched document against query and returns them sorted
// by descending score. Equal scores keep the order of matched. Scores lie in
// [0, 1]. An empty matched set yields an empty result. Ranking with
// MethodOther returns an empty result and ErrMethodUnimplemented.
func (r *Ranker) Rank(query string, matched []corpus.Document) ([]ScoredDoc, error) {
	switch r.method {
	case MethodTFIDF:
		return rankTFIDF(query, matched), nil
	case MethodBM25:
		return rankBM25(query, matched), nil
	case MethodOther:
		return []ScoredDoc{}, fmt.Errorf("ranking with %s: %w", r.method, apperrors.ErrMethodUnimplemented)
	default:
		return []ScoredDoc{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownRankingMethod, r.method)
	}
}

// rankTFIDF fits raw-count TF with smoothed IDF over matched, vectorises the
// query in the same space and scores by cosine similarity.
func rankTFIDF(query string, matched []corpus.Document) []ScoredDoc {
	if len(matched) == 0 {
		return []ScoredDoc{}
	}
	counts := make([]map[string]int, len(matched))
	docFreq := make(map[string]int)
	for i, doc := range matched {
		counts[i] = termCounts(tokenizer.Preprocess(doc.Content))
		for term := range counts[i] {
			docFreq[term]++
		}
	}
	idf := make(map[string]float64, len(docFreq))
	n := float64(len(matched))
	for term, df := range docFreq {
		idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}

	queryVec := make(map[string]float64)
	for term, tf := range termCounts(tokenizer.Preprocess(query)) {
		if w, ok := idf[term]; ok {
			queryVec[term] = float64(tf) * w
		}
	}
	queryTerms := sortedKeys(queryVec)
	queryNorm := norm(queryVec)

	result := make([]ScoredDoc, len(matched))
	for i, doc := range matched {
		result[i] = ScoredDoc{DocID: doc.ID}
		if queryNorm == 0 {
			continue
		}
		docVec := make(map[string]float64, len(counts[i]))
		for term, tf := range counts[i] {
			docVec[term] = float64(tf) * idf[term]
		}
		docNorm := norm(docVec)
		if docNorm == 0 {
			continue
		}
		var dot float64
		for _, term := range queryTerms {
			dot += queryVec[term] * docVec[term]
		}
		result[i].Score = clamp(dot / (queryNorm * docNorm))
	}
	sortByScore(result)
	return result
}

// rankBM25 scores with Okapi BM25 over matched and divides by the best
// score so results share the [0, 1] range of cosine similarity.
func rankBM25(query string, matched []corpus.Document) []ScoredDoc {
	if len(matched) == 0 {
		return []ScoredDoc{}
	}
	counts := make([]map[string]int, len(matched))
	lengths := make([]float64, len(matched))
	docFreq := make(map[string]int)
	var totalLen float64
	for i, doc := range matched {
		terms := tokenizer.Preprocess(doc.Content)
		counts[i] = termCounts(terms)
		lengths[i] = float64(len(terms))
		totalLen += lengths[i]
		for term := range counts[i] {
			docFreq[term]++
		}
	}
	avgDocLength := totalLen / float64(len(matched))
	queryTerms := distinct(tokenizer.Preprocess(query))

	result := make([]ScoredDoc, len(matched))
	var best float64
	for i, doc := range matched {
		var score float64
		for _, term := range queryTerms {
			df, ok := docFreq[term]
			if !ok {
				continue
			}
			idf := computeIDF(int64(len(matched)), int64(df))
			score += idf * computeTFNorm(float64(counts[i][term]), lengths[i], avgDocLength)
		}
		result[i] = ScoredDoc{DocID: doc.ID, Score: score}
		best = math.Max(best, score)
	}
	if best > 0 {
		for i := range result {
			result[i].Score = clamp(result[i].Score / best)
		}
	}
	sortByScore(result)
	return result
}

func computeIDF(totalDocs int64, docFreq int64) float64 {
	numerator := float64(totalDocs) - float64(docFreq)
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func computeTFNorm(termFreq float64, docLength float64, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}

func distinct(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if _, dup := seen[term]; !dup {
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

func termCounts(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	return counts
}

// norm sums in key order so equal vectors always produce equal norms.
func norm(vec map[string]float64) float64 {
	var sum float64
	for _, term := range sortedKeys(vec) {
		sum += vec[term] * vec[term]
	}
	return math.Sqrt(sum)
}

func sortedKeys(vec map[string]float64) []string {
	keys := make([]string, 0, len(vec))
	for term := range vec {
		keys = append(keys, term)
	}
	sort.Strings(keys)
	return keys
}

func clamp(score float64) float64 {
	return math.Max(0, math.Min(1, score))
}

func sortByScore(docs []ScoredDoc) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})
}
