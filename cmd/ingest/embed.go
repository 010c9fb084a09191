package main

import (
	"course-assistant-be/internal/service"

	"github.com/spf13/cobra"
)

func newEmbedCmd(b bootFunc) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed pending and failed chunks",
		Long: `Embeds every chunk that is pending or failed. With --force, already embedded
chunks are embedded again, e.g. after switching the embedding model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, cleanup, err := b()
			if err != nil {
				return err
			}
			defer cleanup()

			indexer, err := core.NewIndexer(cmd.Context())
			if err != nil {
				return err
			}

			cyan.Fprintln(cmd.OutOrStdout(), "Embedding chunks...")
			report, err := indexer.IndexPending(cmd.Context(), service.IndexOptions{Force: force})
			if err != nil {
				return err
			}
			printIndexReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "re-embed chunks that are already embedded")
	return cmd
}
