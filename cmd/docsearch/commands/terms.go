package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
)

func newTermsCmd(cfg *config.Config) *cobra.Command {
	var postings bool
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Print the index vocabulary",
		Long: `Print every distinct term of the loaded corpus in sorted order. With
--postings each term is followed by the documents containing it and the
term's frequency in each.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if postings {
				return printPostings(cmd.OutOrStdout(), a.engine.InvertedIndex().Snapshot())
			}
			for _, term := range a.engine.Vocabulary() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), term); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&postings, "postings", false, "include postings for each term")
	return cmd
}

func printPostings(w io.Writer, entries []index.TermEntry) error {
	for _, entry := range entries {
		parts := make([]string, len(entry.Postings))
		for i, p := range entry.Postings {
			parts[i] = fmt.Sprintf("%s(%d)", p.DocID, p.Frequency)
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", entry.Term, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}
