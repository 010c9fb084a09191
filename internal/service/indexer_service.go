package service

import (
	"context"
	"fmt"
	"sync"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/model"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/contract"
	"course-assistant-be/internal/repository/specification"
	"course-assistant-be/internal/repository/unitofwork"
	"course-assistant-be/pkg/embedding"
	"course-assistant-be/pkg/metrics"
	"course-assistant-be/pkg/rag"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const maxLastErrorLength = 500

type IndexOptions struct {
	// Force re-embeds chunks that are already embedded.
	Force       bool
	DocumentIds []uuid.UUID
}

type IndexReport struct {
	Total    int
	Embedded int
	Failed   int
	Skipped  int
}

type IIndexerService interface {
	IndexPending(ctx context.Context, opts IndexOptions) (*IndexReport, error)
}

type indexerService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.EmbeddingProvider
	dimension  int
	workers    int
	limiter    *rate.Limiter
	logger     logger.ILogger
}

// NewIndexerService bounds embedding calls to workers in flight and ratePerSec
// requests per second. A non-positive rate disables rate limiting.
func NewIndexerService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	dimension int,
	workers int,
	ratePerSec float64,
	logger logger.ILogger,
) IIndexerService {
	if workers < 1 {
		workers = 1
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &indexerService{
		uowFactory: uowFactory,
		provider:   provider,
		dimension:  dimension,
		workers:    workers,
		limiter:    rate.NewLimiter(limit, workers),
		logger:     logger,
	}
}

func (s *indexerService) IndexPending(ctx context.Context, opts IndexOptions) (*IndexReport, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).ChunkRepository()

	var scope []specification.Specification
	if len(opts.DocumentIds) > 0 {
		scope = append(scope, specification.ByDocumentIds{Ids: opts.DocumentIds})
	}

	report := &IndexReport{}
	specs := append([]specification.Specification{}, scope...)
	if !opts.Force {
		skipped, err := repo.Count(ctx, append(scope, specification.ByStatuses{
			Statuses: []string{model.ChunkStatusEmbedded},
		})...)
		if err != nil {
			return nil, fmt.Errorf("count embedded chunks: %w", err)
		}
		report.Skipped = int(skipped)
		specs = append(specs, specification.ByStatuses{
			Statuses: []string{model.ChunkStatusPending, model.ChunkStatusFailed},
		})
	}
	specs = append(specs, specification.OrderBy{Field: "id"})

	chunks, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("load chunks to index: %w", err)
	}
	report.Total = len(chunks) + report.Skipped
	metrics.IndexedChunksTotal.WithLabelValues("skipped").Add(float64(report.Skipped))

	if len(chunks) == 0 {
		return report, nil
	}

	s.logger.Info("INDEXER", "Embedding chunks", map[string]interface{}{
		"chunks":  len(chunks),
		"skipped": report.Skipped,
		"force":   opts.Force,
	})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, chunk := range chunks {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			ok := s.indexChunk(gctx, repo, chunk)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				report.Embedded++
			} else {
				report.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	s.logger.Info("INDEXER", "Embedding finished", map[string]interface{}{
		"total":    report.Total,
		"embedded": report.Embedded,
		"failed":   report.Failed,
		"skipped":  report.Skipped,
	})
	return report, nil
}

// indexChunk embeds one chunk. Each outcome is a single-row update.
func (s *indexerService) indexChunk(ctx context.Context, repo contract.ChunkRepository, chunk *entity.Chunk) bool {
	res, err := s.provider.Generate(ctx, chunk.Text, embedding.TaskRetrievalDocument)
	if err == nil && len(res.Embedding.Values) != s.dimension {
		err = fmt.Errorf("%w: got %d values, index expects %d", rag.ErrDimensionMismatch, len(res.Embedding.Values), s.dimension)
	}
	if err == nil {
		err = repo.MarkEmbedded(ctx, chunk.Id, res.Embedding.Values)
		if err == nil {
			metrics.IndexedChunksTotal.WithLabelValues("embedded").Inc()
			return true
		}
	}
	if ctx.Err() != nil {
		// Cancelled: leave the chunk in its previous state for the next run.
		return false
	}

	s.logger.Warn("INDEXER", "Failed to embed chunk", map[string]interface{}{
		"chunk_id":    chunk.Id,
		"document_id": chunk.DocumentId.String(),
		"error":       err.Error(),
	})
	metrics.IndexedChunksTotal.WithLabelValues("failed").Inc()

	reason := err.Error()
	if r := []rune(reason); len(r) > maxLastErrorLength {
		reason = string(r[:maxLastErrorLength])
	}
	if markErr := repo.MarkFailed(ctx, chunk.Id, reason); markErr != nil {
		s.logger.Error("INDEXER", "Failed to record chunk failure", map[string]interface{}{
			"chunk_id": chunk.Id,
			"error":    markErr.Error(),
		})
	}
	return false
}
