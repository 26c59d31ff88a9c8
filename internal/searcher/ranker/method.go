package ranker

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
)

// Method selects the scoring algorithm a Ranker is bound to.
type Method int

const (
	MethodTFIDF Method = iota
	MethodBM25
	// MethodOther is accepted for configuration compatibility but has no
	// scoring algorithm; ranking with it yields ErrMethodUnimplemented.
	MethodOther
)

func (m Method) String() string {
	switch m {
	case MethodTFIDF:
		return "TF-IDF"
	case MethodBM25:
		return "BM25"
	case MethodOther:
		return "Other"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Implemented reports whether ranking with m produces scores.
func (m Method) Implemented() bool {
	return m == MethodTFIDF || m == MethodBM25
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMethod maps a configuration value to a Method. Matching ignores case
// and the hyphen in "TF-IDF".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "tfidf", "":
		return MethodTFIDF, nil
	case "bm25":
		return MethodBM25, nil
	case "other":
		return MethodOther, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownRankingMethod, s)
	}
}
