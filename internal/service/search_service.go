package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/unitofwork"
	"course-assistant-be/pkg/embedding"
	"course-assistant-be/pkg/rag"
)

type ISearchService interface {
	Search(ctx context.Context, query string, topK int, threshold float64) ([]rag.SearchResult, error)
}

type searchService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.EmbeddingProvider
	indexName  string
	logger     logger.ILogger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	indexName string,
	logger logger.ILogger,
) ISearchService {
	return &searchService{
		uowFactory: uowFactory,
		provider:   provider,
		indexName:  indexName,
		logger:     logger,
	}
}

// Search returns at most topK chunks with similarity >= threshold, most similar
// first. Ties keep insertion order. No match is an empty slice, not an error.
func (s *searchService) Search(ctx context.Context, query string, topK int, threshold float64) ([]rag.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", rag.ErrInvalidArgument)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", rag.ErrInvalidArgument, topK)
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be within [0, 1], got %v", rag.ErrInvalidArgument, threshold)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	index, err := uow.RagIndexRepository().FindByName(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("load index config: %w", err)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: %q", rag.ErrIndexNotConfigured, s.indexName)
	}

	res, err := s.provider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vector := res.Embedding.Values
	if len(vector) != index.Dimension {
		return nil, fmt.Errorf("%w: query embedding has %d values, index %q expects %d",
			rag.ErrDimensionMismatch, len(vector), index.Name, index.Dimension)
	}

	scored, err := uow.ChunkRepository().SearchNearest(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search nearest chunks: %w", err)
	}

	kept := make([]*entity.ScoredChunk, 0, len(scored))
	for _, sc := range scored {
		if sc.Similarity >= threshold {
			kept = append(kept, sc)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		return kept[i].Chunk.Id < kept[j].Chunk.Id
	})
	if len(kept) > topK {
		kept = kept[:topK]
	}

	results := make([]rag.SearchResult, 0, len(kept))
	for _, sc := range kept {
		results = append(results, rag.SearchResult{
			ChunkId:    sc.Chunk.Id,
			DocumentId: sc.Chunk.DocumentId,
			Content:    sc.Chunk.Text,
			Payload:    parsePayload(sc.Chunk.Text),
			SourceName: sc.SourceName,
			CourseCode: sc.CourseCode,
			Title:      sc.DocumentTitle,
			Similarity: sc.Similarity,
		})
	}

	s.logger.Debug("SEARCH", "Semantic search completed", map[string]interface{}{
		"candidates": len(scored),
		"results":    len(results),
		"top_k":      topK,
		"threshold":  threshold,
	})
	return results, nil
}

// parsePayload returns the chunk as an object when its text is a whole JSON object.
func parsePayload(text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil
	}
	return payload
}
