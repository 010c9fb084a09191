package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "document.ingested").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const DocumentIngestedType = "document.ingested"

// DocumentIngested is emitted once per newly stored document.
type DocumentIngested struct {
	DocumentId uuid.UUID
	SourceName string
	Title      string
	ChunkCount int
	OccurredAt time.Time
}

func NewDocumentIngested(documentId uuid.UUID, sourceName, title string, chunkCount int) DocumentIngested {
	return DocumentIngested{
		DocumentId: documentId,
		SourceName: sourceName,
		Title:      title,
		ChunkCount: chunkCount,
		OccurredAt: time.Now(),
	}
}

func (e DocumentIngested) EventType() string {
	return DocumentIngestedType
}

func (e DocumentIngested) Payload() map[string]interface{} {
	return map[string]interface{}{
		"document_id": e.DocumentId.String(),
		"source_name": e.SourceName,
		"title":       e.Title,
		"chunk_count": e.ChunkCount,
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e DocumentIngested) Timestamp() time.Time {
	return e.OccurredAt
}

// DocumentIdFromPayload extracts the document id of a DocumentIngested payload.
func DocumentIdFromPayload(payload map[string]interface{}) (uuid.UUID, bool) {
	raw, ok := payload["document_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
