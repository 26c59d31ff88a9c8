package index

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/tokenizer"
)

var corpus = []struct {
	id      string
	content string
}{
	{"AI1.txt", "Artificial intelligence is fascinating. Intelligence grows."},
	{"history1.txt", "The Roman Empire fell in 476."},
	{"sports1.txt", "Football is a popular sport"},
}

func buildIndex() *InvertedIndex {
	idx := NewInvertedIndex()
	for _, doc := range corpus {
		idx.Add(doc.id, tokenizer.Preprocess(doc.content))
	}
	return idx
}

func TestAddAndLookup(t *testing.T) {
	idx := buildIndex()

	postings := idx.Lookup("intelligence")
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].DocID != "AI1.txt" || postings[0].Frequency != 2 {
		t.Errorf("unexpected posting %+v", postings[0])
	}
	if idx.Lookup("the") != nil {
		t.Error("stop-word should not be indexed")
	}
	if idx.Lookup("missing") != nil {
		t.Error("unknown term should return nil")
	}
	if idx.DocCount() != 3 {
		t.Errorf("expected 3 docs, got %d", idx.DocCount())
	}
}

func TestIndexCorrectness(t *testing.T) {
	idx := buildIndex()
	for _, doc := range corpus {
		terms := make(map[string]struct{})
		for _, term := range tokenizer.Preprocess(doc.content) {
			terms[term] = struct{}{}
		}
		for _, term := range idx.Vocabulary() {
			_, inDoc := terms[term]
			_, inIndex := idx.DocSet(term)[doc.id]
			if inDoc != inIndex {
				t.Errorf("term %q doc %q: in content=%v, in index=%v", term, doc.id, inDoc, inIndex)
			}
		}
		for term := range terms {
			if !idx.Contains(term) {
				t.Errorf("term %q of %q missing from vocabulary", term, doc.id)
			}
		}
	}
}

func TestAddIdempotent(t *testing.T) {
	once := buildIndex()
	twice := buildIndex()
	for _, doc := range corpus {
		twice.Add(doc.id, tokenizer.Preprocess(doc.content))
	}
	if !reflect.DeepEqual(once.Snapshot(), twice.Snapshot()) {
		t.Error("re-indexing the same documents changed the index")
	}
	if once.Size() != twice.Size() || once.DocCount() != twice.DocCount() {
		t.Error("re-indexing changed size or doc count")
	}
}

func TestVocabularySorted(t *testing.T) {
	idx := buildIndex()
	vocab := idx.Vocabulary()
	for i := 1; i < len(vocab); i++ {
		if vocab[i-1] >= vocab[i] {
			t.Fatalf("vocabulary not sorted at %d: %q >= %q", i, vocab[i-1], vocab[i])
		}
	}
	if len(vocab) != idx.TermCount() {
		t.Errorf("vocabulary length %d != term count %d", len(vocab), idx.TermCount())
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := NewInvertedIndex()
	if !idx.Empty() {
		t.Error("new index should be empty")
	}
	if len(idx.Snapshot()) != 0 {
		t.Error("snapshot of empty index should be empty")
	}
	idx.Add("blank.txt", nil)
	if !idx.Empty() {
		t.Error("document without terms should not add vocabulary")
	}
	if idx.DocCount() != 1 {
		t.Errorf("expected doc count 1, got %d", idx.DocCount())
	}
}
