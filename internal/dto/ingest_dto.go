package dto

import "github.com/google/uuid"

type IngestRequest struct {
	Source  string           `json:"source" validate:"required,max=255"`
	Url     *string          `json:"url,omitempty" validate:"omitempty,url"`
	Records []map[string]any `json:"records" validate:"required,min=1,max=1000"`
}

type IngestResponse struct {
	SourceId  uuid.UUID           `json:"source_id"`
	Total     int                 `json:"total"`
	Created   int                 `json:"created"`
	Skipped   int                 `json:"skipped"`
	Failed    int                 `json:"failed"`
	Documents []IngestedDocument  `json:"documents"`
	Errors    []IngestRecordError `json:"errors,omitempty"`
}

type IngestedDocument struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Created    bool      `json:"created"`
	ChunkCount int       `json:"chunk_count"`
}

type IngestRecordError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type IndexReportResponse struct {
	Total    int `json:"total"`
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// EmbedDocumentMessage is the watermill payload asking for a document's chunks to be embedded.
type EmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
