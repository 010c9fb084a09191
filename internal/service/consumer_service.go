package service

import (
	"context"
	"encoding/json"
	"fmt"

	"course-assistant-be/internal/dto"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// HandleEvent embeds the document named by a DocumentIngested event.
	HandleEvent(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	indexer    IIndexerService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexer IIndexerService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		indexer:    indexer,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if err := cs.embedDocument(ctx, payload.DocumentId); err != nil {
		msg.Nack()
		return
	}
	msg.Ack()
}

func (cs *consumerService) HandleEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.DocumentIngestedType {
		return nil
	}
	documentId, ok := events.DocumentIdFromPayload(event.Payload())
	if !ok {
		cs.logger.Warn("CONSUMER", "Event without a valid document id", map[string]interface{}{
			"event_type": event.EventType(),
		})
		return nil
	}
	return cs.embedDocument(ctx, documentId)
}

// embedDocument fails only when the indexer itself fails; chunks that could not
// be embedded are already marked failed and are retried by the next run.
func (cs *consumerService) embedDocument(ctx context.Context, documentId uuid.UUID) error {
	cs.logger.Info("CONSUMER", "Processing document embedding", map[string]interface{}{
		"document_id": documentId.String(),
	})

	report, err := cs.indexer.IndexPending(ctx, IndexOptions{DocumentIds: []uuid.UUID{documentId}})
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to index document", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
		return fmt.Errorf("index document %s: %w", documentId, err)
	}

	cs.logger.Info("CONSUMER", "Document processed", map[string]interface{}{
		"document_id": documentId.String(),
		"embedded":    report.Embedded,
		"failed":      report.Failed,
		"skipped":     report.Skipped,
	})
	return nil
}
