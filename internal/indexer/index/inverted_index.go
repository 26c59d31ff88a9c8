// Package index implements the in-memory inverted index: a mapping from
// term to the set of documents containing it, together with the corpus
// vocabulary.
package index

import (
	"sort"
	"sync"
)

type InvertedIndex struct {
	mu    sync.RWMutex
	index map[string]map[string]int
	docs  map[string]struct{}
	size  int64
}

func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		index: make(map[string]map[string]int),
		docs:  make(map[string]struct{}),
	}
}

// Add records every term of the preprocessed sequence under docID. Adding
// the same (docID, terms) pair again leaves the index unchanged.
func (m *InvertedIndex) Add(docID string, terms []string) {
	freqs := make(map[string]int, len(terms))
	for _, term := range terms {
		freqs[term]++
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for term, freq := range freqs {
		docs, exists := m.index[term]
		if !exists {
			docs = make(map[string]int)
			m.index[term] = docs
		}
		if _, seen := docs[docID]; !seen {
			m.size += int64(len(term) + len(docID) + 16)
		}
		docs[docID] = freq
	}
	m.docs[docID] = struct{}{}
}

// Lookup returns the postings for term ordered by document ID, or nil when
// the term is not in the vocabulary.
func (m *InvertedIndex) Lookup(term string) PostingList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, exists := m.index[term]
	if !exists {
		return nil
	}
	return sortedPostings(docs)
}

// DocSet returns a copy of the set of documents containing term.
func (m *InvertedIndex) DocSet(term string) map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.index[term]
	set := make(map[string]struct{}, len(docs))
	for docID := range docs {
		set[docID] = struct{}{}
	}
	return set
}

func (m *InvertedIndex) Contains(term string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[term]
	return ok
}

// Vocabulary returns every distinct indexed term in lexical order.
func (m *InvertedIndex) Vocabulary() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	terms := make([]string, 0, len(m.index))
	for term := range m.index {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func (m *InvertedIndex) Snapshot() []TermEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]TermEntry, 0, len(m.index))
	for term, docs := range m.index {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: sortedPostings(docs),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func (m *InvertedIndex) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

func (m *InvertedIndex) TermCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}

func (m *InvertedIndex) DocCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *InvertedIndex) Empty() bool {
	return m.TermCount() == 0
}

func sortedPostings(docs map[string]int) PostingList {
	result := make(PostingList, 0, len(docs))
	for docID, freq := range docs {
		result = append(result, Posting{DocID: docID, Frequency: freq})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}
