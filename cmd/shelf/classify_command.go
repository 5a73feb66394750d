package main

import (
	"fmt"
	"strings"

	"bookshelf/internal/genre"

	"github.com/spf13/cobra"
)

func newClassifyCommand(_ *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>...",
		Short: "Map subject or category text to standard genres",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := genre.Classify(args)
			out := cmd.OutOrStdout()
			if len(labels) == 0 {
				fmt.Fprintln(out, muted("(no genre)"))
				return nil
			}
			fmt.Fprintln(out, strings.Join(labels, ", "))
			return nil
		},
	}
}
