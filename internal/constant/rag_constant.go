package constant

const (
	SourceTypeJSONFile = "json-file"
	SourceTypeAPI      = "api"

	DefaultRagIndexName      = "course_catalog"
	DefaultRagIndexDimension = 1536

	IngestChunkSize    = 1200
	IngestChunkOverlap = 200

	// Watermill topic carrying document ids whose chunks await embedding.
	EmbedDocumentTopic = "EMBED_DOCUMENT_CHUNKS"

	// Durable NATS consumer name used by the standalone embed worker.
	EmbedWorkerDurable = "course-assistant-embed-worker"
)
