package main

import (
	"fmt"
	"os"

	"course-assistant-be/internal/service"

	"github.com/spf13/cobra"
)

func newJSONCmd(b bootFunc) *cobra.Command {
	var (
		dir     string
		embed   bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "json",
		Short: "Ingest every JSON file in a directory",
		Long: `Reads each *.json file in --dir. A file may hold one object or an array of
objects; every object becomes a document. Documents whose content is already
stored are skipped. Failing files and items are logged and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				return fmt.Errorf("directory not found: %s", dir)
			}

			core, cleanup, err := b()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cyan.Fprintf(out, "Ingesting %s with %d worker(s)\n", dir, workers)
			report, err := core.IngestService.IngestDirectory(ctx, dir, workers)
			if err != nil {
				return err
			}
			printIngestReport(cmd, report)

			if !embed {
				return nil
			}
			if len(report.DocumentIds) == 0 {
				yellow.Fprintln(out, "No new documents to embed")
				return nil
			}

			indexer, err := core.NewIndexer(ctx)
			if err != nil {
				return err
			}
			indexReport, err := indexer.IndexPending(ctx, service.IndexOptions{DocumentIds: report.DocumentIds})
			if err != nil {
				return err
			}
			printIndexReport(cmd, indexReport)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory containing JSON files")
	cmd.Flags().BoolVar(&embed, "embed", false, "embed the new documents after ingesting")
	cmd.Flags().IntVar(&workers, "workers", 1, "files ingested in parallel")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func printIngestReport(cmd *cobra.Command, r *service.IngestReport) {
	out := cmd.OutOrStdout()
	green.Fprintf(out, "Files: %d", r.Files)
	if r.FilesFailed > 0 {
		red.Fprintf(out, " (%d failed)", r.FilesFailed)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Items: %d  created: %d  skipped: %d  ", r.Total, r.Created, r.Skipped)
	if r.Failed > 0 {
		red.Fprintf(out, "failed: %d\n", r.Failed)
	} else {
		fmt.Fprintf(out, "failed: %d\n", r.Failed)
	}
}

func printIndexReport(cmd *cobra.Command, r *service.IndexReport) {
	out := cmd.OutOrStdout()
	green.Fprintf(out, "Chunks embedded: %d/%d", r.Embedded, r.Total)
	if r.Skipped > 0 {
		yellow.Fprintf(out, "  already embedded: %d", r.Skipped)
	}
	if r.Failed > 0 {
		red.Fprintf(out, "  failed: %d", r.Failed)
	}
	fmt.Fprintln(out)
}
