package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
)

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "List documents containing any query term",
		Long: `List every document that contains at least one of the query terms,
in corpus load order. Terms missing from the vocabulary are ignored, and a
query made only of stopwords matches nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.executor.Search(cmd.Context(), strings.Join(args, " "))
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printMatches(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}

func printMatches(w io.Writer, result *executor.SearchResult) error {
	if result.TotalHits == 0 {
		_, err := fmt.Fprintln(w, "No matched documents found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Matched Documents:"); err != nil {
		return err
	}
	for _, doc := range result.Documents {
		if _, err := fmt.Fprintln(w, doc.ID); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
