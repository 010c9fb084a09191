package implementation

import (
	"context"
	"errors"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/mapper"
	"course-assistant-be/internal/model"
	"course-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RagIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RagIndexMapper
}

func NewRagIndexRepository(db *gorm.DB) contract.RagIndexRepository {
	return &RagIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewRagIndexMapper(),
	}
}

func (r *RagIndexRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.RagIndex, error) {
	var m model.RagIndex
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RagIndexRepositoryImpl) Ensure(ctx context.Context, index *entity.RagIndex) (*entity.RagIndex, error) {
	m := r.mapper.ToModel(index)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.FindByName(ctx, index.Name)
}
