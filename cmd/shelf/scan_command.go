package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bookshelf/internal/book"
	"bookshelf/internal/discovery"
	"bookshelf/internal/series"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var errScanRunning = errors.New("another scan is already running")

// withLock runs fn while holding an exclusive lock on path.
func withLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errScanRunning
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Detect series for books that have none",
		Long:  "Detect series for every book that has none. Unlike the API, which scans in bounded batches, this walks the whole collection in one run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cachePath, err := ctx.cachePath()
			if err != nil {
				return err
			}
			cl, err := ctx.clients()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			return withLock(cachePath+".scan.lock", func() error {
				cache, err := ctx.openCache(cmd.Context())
				if err != nil {
					return err
				}
				defer cache.Close()
				fetcher := series.NewFetcher(cl.openLibrary, cl.googleBooks, cache, cfg.Cache.TTL, ctx.logger())

				return ctx.withBooks(cmd.Context(), func(books *book.Service) error {
					svc := discovery.NewService(books, fetcher, ctx.logger())
					report, err := svc.ScanUntagged(cmd.Context(), discovery.ScanOptions{Apply: apply})
					if err != nil {
						return err
					}
					printScan(cmd, report.Hits, apply)
					return nil
				})
			})
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Write detected series back to the books")
	return cmd
}

func printScan(cmd *cobra.Command, hits []discovery.ScanHit, apply bool) {
	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, muted("No series detected"))
		return
	}
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		state := muted("dry run")
		if apply {
			state = warning("failed")
			if h.Applied {
				state = success("saved")
			}
		}
		rows = append(rows, []string{h.Title, h.Author, h.Series, state})
	}
	fmt.Fprintln(out, renderTable([]string{"Title", "Author", "Series", "State"}, rows, nil))
}
