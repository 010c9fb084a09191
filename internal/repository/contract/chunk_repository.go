package contract

import (
	"context"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/repository/specification"
)

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MarkEmbedded stores the vector and flips status in one statement.
	MarkEmbedded(ctx context.Context, id int64, vector []float32) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	// SearchNearest orders embedded chunks by cosine distance, then id.
	SearchNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredChunk, error)
}
