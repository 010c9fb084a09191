package implementation

import (
	"context"
	"fmt"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/mapper"
	"course-assistant-be/internal/model"
	"course-assistant-be/internal/repository/contract"
	"course-assistant-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// maxEfSearch is the largest hnsw.ef_search pgvector accepts.
const maxEfSearch = 1000

type ChunkRepositoryImpl struct {
	db       *gorm.DB
	mapper   *mapper.ChunkMapper
	efSearch int
}

func NewChunkRepository(db *gorm.DB, efSearch int) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:       db,
		mapper:   mapper.NewChunkMapper(),
		efSearch: efSearch,
	}
}

// EfSearch is the HNSW candidate list size for a query returning limit rows.
// The list never shrinks below limit, otherwise the index would silently
// return fewer neighbours than asked for.
func EfSearch(configured, limit int) int {
	return min(max(configured, limit), maxEfSearch)
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.Chunk
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Chunk{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *ChunkRepositoryImpl) MarkEmbedded(ctx context.Context, id int64, vector []float32) error {
	return r.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding_vector": pgvector.NewVector(vector),
			"status":           model.ChunkStatusEmbedded,
			"last_error":       nil,
		}).Error
}

func (r *ChunkRepositoryImpl) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.Chunk{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.ChunkStatusFailed,
			"last_error": reason,
		}).Error
}

// SearchNearest ranks by cosine distance so the hnsw index can serve the
// ORDER BY; similarity is 1 - distance. The query runs in its own
// transaction so hnsw.ef_search applies to it alone.
func (r *ChunkRepositoryImpl) SearchNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredChunk, error) {
	type result struct {
		model.Chunk
		DocumentTitle string
		CourseCode    string
		SourceName    string
		Similarity    float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		efSearch := fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", EfSearch(r.efSearch, limit))
		if err := tx.Exec(efSearch).Error; err != nil {
			return err
		}
		// Past the ef_search ceiling the index cannot return limit rows; scan exactly.
		if limit > maxEfSearch {
			if err := tx.Exec("SET LOCAL enable_indexscan = off").Error; err != nil {
				return err
			}
		}
		return tx.Table("chunks").
			Select("chunks.*, documents.title AS document_title, documents.course_code AS course_code, "+
				"COALESCE(sources.name, '') AS source_name, 1 - (chunks.embedding_vector <=> ?) AS similarity", queryVector).
			Joins("JOIN documents ON documents.id = chunks.document_id").
			Joins("LEFT JOIN sources ON sources.id = documents.source_id").
			Where("chunks.status = ?", model.ChunkStatusEmbedded).
			Where("chunks.embedding_vector IS NOT NULL").
			Order(gorm.Expr("chunks.embedding_vector <=> ?, chunks.id", queryVector)).
			Limit(limit).
			Scan(&results).Error
	})
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i := range results {
		res := results[i]
		scored[i] = &entity.ScoredChunk{
			Chunk:         r.mapper.ToEntity(&res.Chunk),
			DocumentTitle: res.DocumentTitle,
			CourseCode:    res.CourseCode,
			SourceName:    res.SourceName,
			Similarity:    res.Similarity,
		}
	}
	return scored, nil
}
