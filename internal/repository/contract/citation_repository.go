package contract

import (
	"context"

	"course-assistant-be/internal/entity"
)

type CitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.Citation) error
}
