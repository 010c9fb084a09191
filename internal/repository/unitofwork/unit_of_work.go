package unitofwork

import (
	"context"

	"course-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SourceRepository() contract.SourceRepository
	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
	CitationRepository() contract.CitationRepository
	RagIndexRepository() contract.RagIndexRepository
}
