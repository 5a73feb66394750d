package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&commandContext{})
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shelf",
		Short:         "Personal library tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initColor(ctx.noColor, cmd.OutOrStdout())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.cacheFlag, "cache", "", "Series cache database path")
	flags.BoolVar(&ctx.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Log lookups to stderr")

	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newSeriesCommand(ctx))
	rootCmd.AddCommand(newMissingCommand(ctx))
	rootCmd.AddCommand(newCoverCommand(ctx))
	rootCmd.AddCommand(newEnrichCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))

	return rootCmd
}
