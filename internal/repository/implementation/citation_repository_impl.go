package implementation

import (
	"context"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/mapper"
	"course-assistant-be/internal/model"
	"course-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type CitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CitationMapper
}

func NewCitationRepository(db *gorm.DB) contract.CitationRepository {
	return &CitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewCitationMapper(),
	}
}

func (r *CitationRepositoryImpl) CreateBulk(ctx context.Context, citations []*entity.Citation) error {
	if len(citations) == 0 {
		return nil
	}
	models := make([]*model.Citation, len(citations))
	for i, c := range citations {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*citations[i] = *r.mapper.ToEntity(m)
	}
	return nil
}
