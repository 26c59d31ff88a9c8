// Package indexer owns the loaded corpus: the documents in load order and
// the inverted index built from them. The engine is append-only until Seal
// and read-only after.
package indexer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
)

type Engine struct {
	index   *index.InvertedIndex
	mu      sync.RWMutex
	docs    []corpus.Document
	order   map[string]int
	sealed  bool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine returns an empty engine. m may be nil.
func NewEngine(m *metrics.Metrics) *Engine {
	return &Engine{
		index:   index.NewInvertedIndex(),
		order:   make(map[string]int),
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Index preprocesses content and adds it to the inverted index under docID.
// Indexing the same (docID, content) pair again is a no-op; indexing a
// known docID with different content is rejected.
func (e *Engine) Index(docID string, content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return fmt.Errorf("indexing %s: %w", docID, apperrors.ErrIndexSealed)
	}
	if pos, exists := e.order[docID]; exists {
		if e.docs[pos].Content != content {
			return fmt.Errorf("indexing %s: %w: content differs from first load",
				docID, apperrors.ErrInvalidInput)
		}
		return nil
	}

	terms := tokenizer.Preprocess(content)
	e.index.Add(docID, terms)

	e.order[docID] = len(e.docs)
	e.docs = append(e.docs, corpus.Document{ID: docID, Content: content})

	if e.metrics != nil {
		e.metrics.VocabularySize.Set(float64(e.index.TermCount()))
	}
	e.logger.Debug("document indexed",
		"doc_id", docID,
		"token_count", len(terms),
		"vocabulary", e.index.TermCount(),
	)
	return nil
}

// Seal freezes the engine. Later calls to Index fail with ErrIndexSealed.
func (e *Engine) Seal() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sealed = true
	e.logger.Info("index sealed",
		"docs", len(e.docs),
		"terms", e.index.TermCount(),
		"index_bytes", e.index.Size(),
	)
}

func (e *Engine) Sealed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sealed
}

// InvertedIndex returns the inverted index for read-only use.
func (e *Engine) InvertedIndex() *index.InvertedIndex {
	return e.index
}

// Documents returns the corpus in load order.
func (e *Engine) Documents() []corpus.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	docs := make([]corpus.Document, len(e.docs))
	copy(docs, e.docs)
	return docs
}

// Document looks up a document by ID.
func (e *Engine) Document(docID string) (corpus.Document, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	pos, ok := e.order[docID]
	if !ok {
		return corpus.Document{}, false
	}
	return e.docs[pos], true
}

// Position returns the load position of docID, or -1.
func (e *Engine) Position(docID string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if pos, ok := e.order[docID]; ok {
		return pos
	}
	return -1
}

func (e *Engine) GetTotalDocs() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

// Vocabulary returns the sorted distinct terms of the corpus.
func (e *Engine) Vocabulary() []string {
	return e.index.Vocabulary()
}
