package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/model"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/specification"
	"course-assistant-be/internal/repository/unitofwork"
	"course-assistant-be/pkg/utils"

	"github.com/google/uuid"
)

// NewDocument is a normalized record ready to be stored.
type NewDocument struct {
	SourceId     *uuid.UUID
	Title        string
	Content      string
	RawMetadata  map[string]any
	CourseCode   string
	Department   string
	Campus       string
	Units        string
	CitationNote string
}

type InsertResult struct {
	Document   *entity.Document
	Created    bool
	ChunkCount int
}

type IDocumentStore interface {
	EnsureSource(ctx context.Context, name string, sourceType string, url *string) (uuid.UUID, error)
	InsertDocumentIfNew(ctx context.Context, doc NewDocument) (*InsertResult, error)
}

type documentStore struct {
	uowFactory unitofwork.RepositoryFactory
	splitter   *utils.TextSplitter
	logger     logger.ILogger
}

func NewDocumentStore(uowFactory unitofwork.RepositoryFactory, splitter *utils.TextSplitter, logger logger.ILogger) IDocumentStore {
	return &documentStore{
		uowFactory: uowFactory,
		splitter:   splitter,
		logger:     logger,
	}
}

// ContentHash is the hex sha256 digest used for deduplication.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (s *documentStore) EnsureSource(ctx context.Context, name string, sourceType string, url *string) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.SourceRepository().FindOne(ctx, specification.ByName{Name: name})
	if err != nil {
		return uuid.Nil, fmt.Errorf("find source %q: %w", name, err)
	}
	if existing != nil {
		return existing.Id, nil
	}

	now := time.Now()
	source := entity.Source{
		Id:        uuid.New(),
		Name:      name,
		Type:      sourceType,
		Url:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uow.SourceRepository().Create(ctx, &source); err != nil {
		return uuid.Nil, fmt.Errorf("create source %q: %w", name, err)
	}

	s.logger.Info("DOCUMENT_STORE", "Source created", map[string]interface{}{
		"source_id": source.Id.String(),
		"name":      name,
	})
	return source.Id, nil
}

// InsertDocumentIfNew stores the document, its chunks and their citations in
// one transaction. A document whose content hash already exists is returned
// untouched with Created=false.
func (s *documentStore) InsertDocumentIfNew(ctx context.Context, doc NewDocument) (*InsertResult, error) {
	hash := ContentHash(doc.Content)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DocumentRepository().FindOne(ctx, specification.ByContentHash{Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("find document by hash: %w", err)
	}
	if existing != nil {
		return &InsertResult{Document: existing, Created: false}, nil
	}

	now := time.Now()
	document := entity.Document{
		Id:          uuid.New(),
		Title:       doc.Title,
		Content:     doc.Content,
		RawMetadata: doc.RawMetadata,
		ContentHash: hash,
		SourceId:    doc.SourceId,
		CourseCode:  doc.CourseCode,
		Department:  doc.Department,
		Campus:      doc.Campus,
		Units:       doc.Units,
		CreatedAt:   now,
	}

	texts := s.splitter.Split(doc.Content)
	chunks := make([]*entity.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &entity.Chunk{
			DocumentId: document.Id,
			ChunkIndex: i,
			Text:       text,
			Status:     model.ChunkStatusPending,
			TokenCount: utils.EstimateTokens(text),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if err := uow.ChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, fmt.Errorf("create chunks: %w", err)
	}

	if doc.SourceId != nil && len(chunks) > 0 {
		citations := make([]*entity.Citation, 0, len(chunks))
		for _, c := range chunks {
			var note *string
			if doc.CitationNote != "" {
				n := doc.CitationNote
				note = &n
			}
			citations = append(citations, &entity.Citation{
				ChunkId:   c.Id,
				SourceId:  *doc.SourceId,
				Note:      note,
				CreatedAt: now,
			})
		}
		if err := uow.CitationRepository().CreateBulk(ctx, citations); err != nil {
			return nil, fmt.Errorf("create citations: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit document: %w", err)
	}

	return &InsertResult{
		Document:   &document,
		Created:    true,
		ChunkCount: len(chunks),
	}, nil
}
