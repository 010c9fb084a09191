package contract

import (
	"context"

	"course-assistant-be/internal/entity"
)

type RagIndexRepository interface {
	FindByName(ctx context.Context, name string) (*entity.RagIndex, error)
	// Ensure inserts the row when no index with that name exists and returns the stored row.
	Ensure(ctx context.Context, index *entity.RagIndex) (*entity.RagIndex, error)
}
