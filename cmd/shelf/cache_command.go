package main

import (
	"fmt"

	"bookshelf/internal/series"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the series cache",
	}
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))
	return cacheCmd
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached series catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer cache.Close()

			n, err := cache.Purge(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d entries from %s\n", n, cache.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", series.CacheKeyPrefix, "Only purge keys with this prefix")
	return cmd
}
