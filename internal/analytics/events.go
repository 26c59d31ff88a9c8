package analytics

import "time"

type EventType string

const (
	EventSearch EventType = "search"
	EventRank   EventType = "rank"
	EventLoad   EventType = "load_document"
)

// QueryEvent records one retrieval or ranking request. Cached reports that
// a result cache was consulted; CacheHit is meaningful only then.
type QueryEvent struct {
	Type              EventType `json:"type"`
	Query             string    `json:"query"`
	Terms             []string  `json:"terms"`
	Method            string    `json:"method,omitempty"`
	MethodImplemented bool      `json:"method_implemented"`
	TotalHits         int       `json:"total_hits"`
	Returned          int       `json:"returned"`
	LatencyMs         int64     `json:"latency_ms"`
	Cached            bool      `json:"cached"`
	CacheHit          bool      `json:"cache_hit"`
	Timestamp         time.Time `json:"timestamp"`
	RequestID         string    `json:"request_id"`
}

// LoadEvent records one document added to the index at startup.
type LoadEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	TermCount  int       `json:"term_count"`
	SizeBytes  int       `json:"size_bytes"`
	Timestamp  time.Time `json:"timestamp"`
}
