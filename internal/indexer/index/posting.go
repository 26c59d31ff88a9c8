package index

// Posting records a document's occurrences of a single term.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

type PostingList []Posting

// DocIDs returns the document identifiers of the list in order.
func (pl PostingList) DocIDs() []string {
	ids := make([]string, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

// TermEntry is one row of an index snapshot.
type TermEntry struct {
	Term     string      `json:"term"`
	Postings PostingList `json:"postings"`
}
