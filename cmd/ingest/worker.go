package main

import (
	"fmt"

	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/service"
	"course-assistant-be/pkg/events"
	pktNats "course-assistant-be/pkg/nats"

	"github.com/spf13/cobra"
)

func newWorkerCmd(b bootFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Embed documents announced on NATS",
		Long: `Consumes document.ingested events from the NATS events stream and embeds the
announced documents. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, cleanup, err := b()
			if err != nil {
				return err
			}
			defer cleanup()

			if core.Config.App.NatsURL == "" {
				return fmt.Errorf("NATS_URL is not set")
			}

			indexer, err := core.NewIndexer(cmd.Context())
			if err != nil {
				return err
			}

			sub, err := pktNats.NewSubscriber(core.Config.App.NatsURL, core.Logger)
			if err != nil {
				return err
			}
			defer sub.Close()

			consumer := service.NewConsumerService(core.PubSub, constant.EmbedDocumentTopic, indexer, core.Logger)
			err = sub.Subscribe(cmd.Context(), events.DocumentIngestedType, constant.EmbedWorkerDurable, consumer.HandleEvent)
			if err != nil {
				return err
			}

			cyan.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", pktNats.Subject(events.DocumentIngestedType))
			<-cmd.Context().Done()
			return nil
		},
	}
}
