package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/logger"
)

// globalFlags are shared by every subcommand. Non-empty values override the
// config file and environment.
type globalFlags struct {
	configPath string
	method     string
	corpusDir  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:   "docsearch",
		Short: "Boolean retrieval and TF-IDF ranking over a text corpus",
		Long: `docsearch - index a small text corpus and query it.

Documents are loaded once at startup from a directory of .txt files or a
PostgreSQL table, preprocessed (lowercase, alphanumeric tokens, English
stopwords removed) and indexed. Queries are answered in two steps:

  search   every document containing at least one query term
  rank     the same documents ordered by similarity to the query

Examples:
  # Query the nine reference documents in ./corpus
  docsearch --corpus-dir ./corpus search artificial intelligence
  docsearch --corpus-dir ./corpus rank "history of sport"

  # Rank with BM25 instead of TF-IDF
  docsearch -m bm25 rank football

  # Serve the HTTP API with settings from a file
  docsearch -c docsearch.yaml serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(flags)
			if err != nil {
				return err
			}
			*cfg = *loaded
			logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to YAML config file")
	pf.StringVarP(&flags.method, "method", "m", "", "ranking method: TF-IDF, BM25 or Other")
	pf.StringVar(&flags.corpusDir, "corpus-dir", "", "directory holding the corpus files")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newSearchCmd(cfg),
		newRankCmd(cfg),
		newTermsCmd(cfg),
		newServeCmd(cfg),
		newLoadTestCmd(),
	)
	return root
}

// Execute runs the CLI with ctx as the base context of every command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.method != "" {
		cfg.Ranking.Method = flags.method
	}
	if flags.corpusDir != "" {
		cfg.Corpus.Source = "files"
		cfg.Corpus.Dir = flags.corpusDir
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := ranker.ParseMethod(cfg.Ranking.Method); err != nil {
		return nil, err
	}
	return cfg, nil
}
