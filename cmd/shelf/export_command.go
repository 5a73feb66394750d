package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"bookshelf/internal/book"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type exportFile struct {
	ExportedAt time.Time   `yaml:"exported_at"`
	Status     book.Status `yaml:"status,omitempty"`
	Count      int         `yaml:"count"`
	Books      []book.Book `yaml:"books"`
}

func writeExport(w io.Writer, status book.Status, books []book.Book, now time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportFile{ExportedAt: now.UTC(), Status: status, Count: len(books), Books: books}); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return enc.Close()
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFlag string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection to a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status book.Status
			if statusFlag != "" {
				s, err := book.ParseStatus(statusFlag)
				if err != nil {
					return err
				}
				status = s
			}

			return ctx.withBooks(cmd.Context(), func(books *book.Service) error {
				list, err := books.ListAll(cmd.Context(), book.Query{Status: status})
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				toFile := outPath != "" && outPath != "-"
				if toFile {
					f, err := os.Create(outPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				if err := writeExport(w, status, list, time.Now()); err != nil {
					return err
				}
				if toFile {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d books to %s\n", len(list), outPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFlag, "status", "", "Only export one shelf")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default stdout)")
	return cmd
}
