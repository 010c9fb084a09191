package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chunk struct {
	Id              int64
	DocumentId      uuid.UUID
	ChunkIndex      int
	Text            string
	EmbeddingVector []float32
	Status          string
	TokenCount      int
	LastError       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScoredChunk is a chunk returned by nearest-neighbour search with its document context.
type ScoredChunk struct {
	Chunk         *Chunk
	DocumentTitle string
	CourseCode    string
	SourceName    string
	Similarity    float64 // 1 - cosine distance
}
