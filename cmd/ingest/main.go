// Package main ist eine CLI, die lokale Dokumente über denselben Orchestrator wie der HTTP-Upload einspielt.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scientify/services"
)

const (
	exitError     = 1
	exitDataError = 3
)

var opts ingestOptions

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a local document into the publication store",
	Long: `ingest converts a local .pdf, .docx, .tex or .latex file to PDF, ranks its keywords
and stores it as a publication owned by --user.

Metadata comes from --bibtex and/or the individual flags; flags win over BibTeX values.
The database is configured through the same environment variables as the server
(DB_DRIVER=sqlite with DB_PATH for local use).`,
	Example:       "  ingest --file paper.docx --bibtex ref.bib --user 5f0c...",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.File, "file", "", "document to ingest (.pdf, .docx, .tex, .latex)")
	f.StringVar(&opts.BibTeX, "bibtex", "", "optional BibTeX file with the publication's metadata")
	f.StringVar(&opts.Title, "title", "", "title")
	f.StringVar(&opts.Authors, "authors", "", "comma-separated author names")
	f.StringVar(&opts.Year, "year", "", "publication year")
	f.StringVar(&opts.Journal, "journal", "", "journal")
	f.StringVar(&opts.DOI, "doi", "", "DOI, e.g. 10.1000/xyz")
	f.StringVar(&opts.User, "user", "", "owner UUID")
	_ = rootCmd.MarkFlagRequired("file")
	_ = rootCmd.MarkFlagRequired("user")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		validation *services.ValidationError
		conflict   *services.ConflictError
	)
	if errors.As(err, &validation) || errors.As(err, &conflict) {
		return exitDataError
	}
	return exitError
}
