package main

import (
	"fmt"

	"bookshelf/internal/cover"
	"bookshelf/internal/enrich"
	"bookshelf/internal/genre"
	"bookshelf/internal/lookup"

	"github.com/spf13/cobra"
)

func newCoverCommand(ctx *commandContext) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "cover <isbn>",
		Short: "Resolve a cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients()
			if err != nil {
				return err
			}
			resolver := cover.NewResolver(ctx.logger(), cover.DefaultProviders(cl.itunes, cl.googleBooks, cl.openLibrary)...)
			res := resolver.FindResult(cmd.Context(), cover.Query{ISBN: args[0], Title: title, Author: author})

			out := cmd.OutOrStdout()
			for _, a := range res.Attempts {
				line := fmt.Sprintf("  %-12s %s", a.Provider, a.Outcome)
				if a.Error != "" {
					line += " " + muted(a.Error)
				}
				fmt.Fprintln(out, line)
			}
			if !res.OK() {
				fmt.Fprintln(out, warning("No cover found"))
				return nil
			}
			fmt.Fprintln(out, success(res.Value))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title for the search fallback")
	cmd.Flags().StringVar(&author, "author", "", "Author for the search fallback")
	return cmd
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var hints []string
	cmd := &cobra.Command{
		Use:   "enrich <isbn>",
		Short: "Look up genre and series for an ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := ctx.clients()
			if err != nil {
				return err
			}
			svc := enrich.NewService(cl.openLibrary, cl.googleBooks, genre.Default(), ctx.logger())
			res := svc.EnrichResult(cmd.Context(), args[0], hints)

			out := cmd.OutOrStdout()
			if res.Status == lookup.StatusFailed {
				fmt.Fprintln(out, warning("Lookup failed: "+res.Err.Error()))
				return nil
			}
			fmt.Fprintf(out, "Genre:  %s\n", orNone(res.Value.Genre))
			fmt.Fprintf(out, "Series: %s\n", orNone(res.Value.Series))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&hints, "hint", nil, "Category hint (repeatable)")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return muted("(none)")
	}
	return s
}
