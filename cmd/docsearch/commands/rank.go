package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
)

func newRankCmd(cfg *config.Config) *cobra.Command {
	var (
		format string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "rank [query...]",
		Short: "Rank matching documents by similarity to the query",
		Long: `Retrieve the documents matching the query and order them by descending
similarity. TF-IDF weights and cosine similarity are computed over the
matched documents only, so scores are comparable within one query but not
across queries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.executor.Rank(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printRanking(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results to print, 0 for all")
	return cmd
}

func printRanking(w io.Writer, result *executor.RankResult) error {
	switch {
	case result.TotalHits == 0:
		_, err := fmt.Fprintln(w, "No matched documents found.")
		return err
	case len(result.Results) == 0:
		_, err := fmt.Fprintln(w, "No relevant documents found.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Ranked Relevant Documents (%s):\n", result.Method); err != nil {
		return err
	}
	for i, doc := range result.Results {
		if _, err := fmt.Fprintf(w, "%d. %s - Similarity: %s\n", i+1, doc.DocID, formatScore(doc.Score)); err != nil {
			return err
		}
	}
	return nil
}

// formatScore prints the shortest representation that round-trips, always
// with a decimal point.
func formatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
