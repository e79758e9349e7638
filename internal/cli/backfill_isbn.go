package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/database"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/metadata"
	"github.com/mrlokans/catalog/internal/tasks"
)

// BackfillISBNCommand fills in missing ISBNs once and exits.
type BackfillISBNCommand struct {
	DatabaseDSN string
	DryRun      bool

	lookup config.Lookup
	out    io.Writer
}

func NewBackfillISBNCommand(cfg *config.Config) *BackfillISBNCommand {
	return &BackfillISBNCommand{
		DatabaseDSN: cfg.Database.DSN,
		lookup:      cfg.Lookup,
		out:         os.Stdout,
	}
}

func (cmd *BackfillISBNCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("backfill-isbn", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabaseDSN, "db", cmd.DatabaseDSN, "SQLite path or postgres:// DSN (defaults to DATABASE)")
	fs.DurationVar(&cmd.lookup.ISBNDelay, "delay", cmd.lookup.ISBNDelay, "Wait before every ISBN request")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Only list the books without an ISBN")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s backfill-isbn [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Look up the ISBN of every book that has none.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *BackfillISBNCommand) Run(ctx context.Context) error {
	db, err := database.NewQuietDatabase(cmd.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	svc := catalog.NewService(books.NewRepository(db.DB), metadata.NewClient(cmd.lookup))

	if cmd.DryRun {
		ids, err := svc.BooksMissingISBN(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "%d books without an ISBN: %v\n", len(ids), ids)
		return nil
	}

	start := time.Now()
	result, err := tasks.BackfillAll(ctx, svc)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.out, "Checked %d books: %d updated, %d failed (%v)\n",
		result.Total, result.Updated, result.Failed, time.Since(start).Round(time.Millisecond))
	return nil
}
