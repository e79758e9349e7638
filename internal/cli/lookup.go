package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/catalog/internal/config"
	"github.com/mrlokans/catalog/internal/metadata"
)

// LookupCommand queries the external book search from the terminal.
type LookupCommand struct {
	Query    string
	SkipISBN bool

	lookup config.Lookup
	out    io.Writer
}

func NewLookupCommand(cfg config.Lookup) *LookupCommand {
	return &LookupCommand{lookup: cfg, out: os.Stdout}
}

func (cmd *LookupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)

	fs.StringVar(&cmd.Query, "q", "", "Title or keywords to search for (required)")
	fs.StringVar(&cmd.lookup.APIKey, "api-key", cmd.lookup.APIKey, "RapidAPI key (defaults to API_KEY)")
	fs.StringVar(&cmd.lookup.SearchURL, "search-url", cmd.lookup.SearchURL, "Book metadata provider base URL")
	fs.StringVar(&cmd.lookup.ISBNURL, "isbn-url", cmd.lookup.ISBNURL, "ISBN provider base URL")
	fs.BoolVar(&cmd.SkipISBN, "no-isbn", false, "Skip the ISBN lookup")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s lookup [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search the external book provider and print the first match.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s lookup -q \"the left hand of darkness\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s lookup -q dune -no-isbn\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Query = strings.TrimSpace(cmd.Query)
	if cmd.Query == "" {
		fs.Usage()
		return fmt.Errorf("query is required")
	}

	return nil
}

func (cmd *LookupCommand) Run(ctx context.Context) error {
	client := metadata.NewClient(cmd.lookup)

	book, err := client.SearchByTitleOrKeywords(ctx, cmd.Query)
	if err != nil {
		return err
	}
	if !cmd.SkipISBN {
		book.ISBN = client.LookupISBN(ctx, book.Title, book.Authors)
	}

	fmt.Fprintf(cmd.out, "Title:            %s\n", book.Title)
	fmt.Fprintf(cmd.out, "Authors:          %s\n", book.AuthorNames())
	fmt.Fprintf(cmd.out, "Publication year: %s\n", book.PublicationYear)
	if book.Cover != "" {
		fmt.Fprintf(cmd.out, "Cover:            %s\n", book.Cover)
	}
	if book.AdditionalInfo != "" {
		fmt.Fprintf(cmd.out, "Info:             %s\n", book.AdditionalInfo)
	}
	if !cmd.SkipISBN {
		isbn := book.ISBN
		if isbn == "" {
			isbn = "(not found)"
		}
		fmt.Fprintf(cmd.out, "ISBN:             %s\n", isbn)
	}

	return nil
}
