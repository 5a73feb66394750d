package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"bookshelf/internal/book"
	"bookshelf/internal/lookup"
	"bookshelf/internal/series"

	"github.com/spf13/cobra"
)

// fetchSeries runs one catalog fetch against the on-disk cache.
func (c *commandContext) fetchSeries(ctx context.Context, name, author string) (lookup.Result[[]series.Entry], error) {
	cl, err := c.clients()
	if err != nil {
		return lookup.Result[[]series.Entry]{}, err
	}
	cfg, _ := c.ensureConfig()
	cache, err := c.openCache(ctx)
	if err != nil {
		return lookup.Result[[]series.Entry]{}, err
	}
	defer cache.Close()

	fetcher := series.NewFetcher(cl.openLibrary, cl.googleBooks, cache, cfg.Cache.TTL, c.logger())
	return fetcher.FetchResult(ctx, name, author), nil
}

func printEntries(out io.Writer, entries []series.Entry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		pos, year := "", ""
		if e.Position > 0 {
			pos = strconv.Itoa(e.Position)
		}
		if e.FirstPublishYear > 0 {
			year = strconv.Itoa(e.FirstPublishYear)
		}
		cover := success("yes")
		if e.CoverURL == "" {
			cover = muted("no")
		}
		rows = append(rows, []string{pos, e.Title, e.Author, year, cover})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Author", "Year", "Cover"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	var author string
	cmd := &cobra.Command{
		Use:   "series <name>",
		Short: "List the catalog entries of a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.fetchSeries(cmd.Context(), args[0], author)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Value) == 0 {
				fmt.Fprintln(out, warning("No entries found for "+args[0]))
				return nil
			}
			fmt.Fprintln(out, heading(args[0]), muted("("+res.Source+")"))
			printEntries(out, res.Value)
			return nil
		},
	}
	cmd.Flags().StringVarP(&author, "author", "a", "", "Series author")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newMissingCommand(ctx *commandContext) *cobra.Command {
	var (
		author string
		owned  []string
	)
	cmd := &cobra.Command{
		Use:   "missing <name>",
		Short: "Show series entries not among the owned titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.fetchSeries(cmd.Context(), args[0], author)
			if err != nil {
				return err
			}
			books := make([]book.Book, len(owned))
			for i, title := range owned {
				books[i] = book.Book{Title: title, Author: author}
			}
			missing := series.MissingFrom(books, res.Value)

			out := cmd.OutOrStdout()
			if len(missing) == 0 {
				fmt.Fprintln(out, success("Nothing missing from "+args[0]))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", heading(args[0]), muted(fmt.Sprintf("(%d missing)", len(missing))))
			printEntries(out, missing)
			return nil
		},
	}
	cmd.Flags().StringVarP(&author, "author", "a", "", "Series author")
	cmd.Flags().StringArrayVar(&owned, "owned", nil, "Owned title (repeatable)")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}
