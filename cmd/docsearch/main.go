// Command docsearch loads a small text corpus into an inverted index and
// answers boolean and ranked queries over it.
//
// Usage:
//
//	docsearch [flags] <command> [args]
//
// Commands:
//
//	search   - List documents containing any query term
//	rank     - Rank matching documents by similarity to the query
//	terms    - Print the index vocabulary and postings
//	serve    - Run the HTTP query API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/docrank/cmd/docsearch/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
