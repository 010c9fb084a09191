package contract

import (
	"context"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/repository/specification"
)

type SourceRepository interface {
	Create(ctx context.Context, source *entity.Source) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Source, error)
}
