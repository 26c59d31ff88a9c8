// Package corpus defines the document type and the sources the engine is
// loaded from. A Source enumerates document names and reads their content;
// Load drives a Source into an index, skipping documents that fail to read.
package corpus

import "context"

// Document is a named text loaded once at startup and never mutated.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Source enumerates and reads named documents.
type Source interface {
	Names(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) (string, error)
}

// Sink receives every successfully read document.
type Sink interface {
	Index(docID string, content string) error
}
