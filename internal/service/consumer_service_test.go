package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumer_ProcessMessage(t *testing.T) {
	documentId := uuid.New()
	indexer := &fakeIndexer{}
	cs := NewConsumerService(nil, "topic", indexer, nopLogger()).(*consumerService)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"document_id":"`+documentId.String()+`"}`))
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("message was not acked")
	}
	require.Len(t, indexer.calls, 1)
	assert.Equal(t, []uuid.UUID{documentId}, indexer.calls[0].DocumentIds)
}

func TestConsumer_ProcessMessage_InvalidPayloadAcked(t *testing.T) {
	indexer := &fakeIndexer{}
	cs := NewConsumerService(nil, "topic", indexer, nopLogger()).(*consumerService)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`not json`))
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("invalid message should be acked")
	}
	assert.Empty(t, indexer.calls)
}

func TestConsumer_ProcessMessage_IndexerFailureNacked(t *testing.T) {
	indexer := &fakeIndexer{err: errors.New("db down")}
	cs := NewConsumerService(nil, "topic", indexer, nopLogger()).(*consumerService)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"document_id":"`+uuid.NewString()+`"}`))
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Nacked():
	default:
		t.Fatal("message was not nacked")
	}
}

func TestConsumer_HandleEvent(t *testing.T) {
	indexer := &fakeIndexer{}
	cs := NewConsumerService(nil, "topic", indexer, nopLogger())
	documentId := uuid.New()

	require.NoError(t, cs.HandleEvent(context.Background(), events.NewDocumentIngested(documentId, "catalog", "Intro", 2)))
	require.NoError(t, cs.HandleEvent(context.Background(), events.BaseEvent{Type: "other.event"}))

	require.Len(t, indexer.calls, 1)
	assert.Equal(t, documentId, indexer.calls[0].DocumentIds[0])
}

func TestConsumer_ConsumeFromGoChannel(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()
	indexer := &fakeIndexer{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs := NewConsumerService(pubSub, "EMBED_DOCUMENT_CHUNKS", indexer, nopLogger())
	require.NoError(t, cs.Consume(ctx))

	publisher := NewPublisherService(pubSub, "EMBED_DOCUMENT_CHUNKS")
	require.NoError(t, publisher.Publish(ctx, []byte(`{"document_id":"`+uuid.NewString()+`"}`)))

	assert.Eventually(t, func() bool {
		indexer.mu.Lock()
		defer indexer.mu.Unlock()
		return len(indexer.calls) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
