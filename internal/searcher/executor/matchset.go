package executor

import "github.com/Adithya-Monish-Kumar-K/docrank/internal/corpus"

// MatchSet is the result of boolean retrieval: matching documents with
// their content, ordered by corpus load position.
type MatchSet struct {
	docs []corpus.Document
}

func (m MatchSet) Len() int {
	return len(m.docs)
}

func (m MatchSet) Empty() bool {
	return len(m.docs) == 0
}

func (m MatchSet) IDs() []string {
	ids := make([]string, len(m.docs))
	for i, doc := range m.docs {
		ids[i] = doc.ID
	}
	return ids
}

// Documents returns a copy of the matched documents.
func (m MatchSet) Documents() []corpus.Document {
	docs := make([]corpus.Document, len(m.docs))
	copy(docs, m.docs)
	return docs
}

// Map returns the matches keyed by document ID.
func (m MatchSet) Map() map[string]string {
	out := make(map[string]string, len(m.docs))
	for _, doc := range m.docs {
		out[doc.ID] = doc.Content
	}
	return out
}
