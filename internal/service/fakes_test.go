package service

import (
	"context"
	"errors"
	"sync"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/contract"
	"course-assistant-be/internal/repository/specification"
	"course-assistant-be/internal/repository/unitofwork"
	"course-assistant-be/pkg/embedding"
	"course-assistant-be/pkg/events"

	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for the database behind the unit of work.
// It understands the specifications the services use.
type memDB struct {
	mu        sync.Mutex
	sources   []*entity.Source
	documents []*entity.Document
	chunks    []*entity.Chunk
	citations []*entity.Citation
	indexes   map[string]*entity.RagIndex
	nearest   []*entity.ScoredChunk

	nextSeq   int64
	nextChunk int64

	documentSpecs  []specification.Specification
	nearestLimit   int
	failChunks     error
	failMarkChunks map[int64]bool

	snapshot *memSnapshot
}

type memSnapshot struct {
	sources   []*entity.Source
	documents []*entity.Document
	chunks    []*entity.Chunk
	citations []*entity.Citation
}

func newMemDB() *memDB {
	return &memDB{indexes: map[string]*entity.RagIndex{}, failMarkChunks: map[int64]bool{}}
}

func (db *memDB) chunkByID(id int64) *entity.Chunk {
	for _, c := range db.chunks {
		if c.Id == id {
			return c
		}
	}
	return nil
}

type memFactory struct{ db *memDB }

func (f memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{db: f.db}
}

type memUoW struct {
	db     *memDB
	active bool
}

func (u *memUoW) Begin(ctx context.Context) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	u.db.snapshot = &memSnapshot{
		sources:   append([]*entity.Source(nil), u.db.sources...),
		documents: append([]*entity.Document(nil), u.db.documents...),
		chunks:    append([]*entity.Chunk(nil), u.db.chunks...),
		citations: append([]*entity.Citation(nil), u.db.citations...),
	}
	u.active = true
	return nil
}

func (u *memUoW) Commit() error {
	if !u.active {
		return errors.New("no transaction to commit")
	}
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	u.db.snapshot = nil
	u.active = false
	return nil
}

func (u *memUoW) Rollback() error {
	if !u.active {
		return errors.New("no transaction to rollback")
	}
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	s := u.db.snapshot
	u.db.sources, u.db.documents, u.db.chunks, u.db.citations = s.sources, s.documents, s.chunks, s.citations
	u.db.snapshot = nil
	u.active = false
	return nil
}

func (u *memUoW) SourceRepository() contract.SourceRepository     { return memSources{u.db} }
func (u *memUoW) DocumentRepository() contract.DocumentRepository { return memDocuments{u.db} }
func (u *memUoW) ChunkRepository() contract.ChunkRepository       { return memChunks{u.db} }
func (u *memUoW) CitationRepository() contract.CitationRepository { return memCitations{u.db} }
func (u *memUoW) RagIndexRepository() contract.RagIndexRepository { return memIndexes{u.db} }

type memSources struct{ db *memDB }

func (r memSources) Create(ctx context.Context, s *entity.Source) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *s
	r.db.sources = append(r.db.sources, &cp)
	return nil
}

func (r memSources) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Source, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.sources {
		match := true
		for _, spec := range specs {
			if byName, ok := spec.(specification.ByName); ok && s.Name != byName.Name {
				match = false
			}
		}
		if match {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

type memDocuments struct{ db *memDB }

func (r memDocuments) Create(ctx context.Context, d *entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nextSeq++
	d.Seq = r.db.nextSeq
	cp := *d
	r.db.documents = append(r.db.documents, &cp)
	return nil
}

func (r memDocuments) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, d := range r.db.documents {
		match := true
		for _, spec := range specs {
			if byHash, ok := spec.(specification.ByContentHash); ok {
				match = match && d.ContentHash == byHash.Hash
			}
		}
		if match {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

// FindAll records the specifications and returns every stored document.
func (r memDocuments) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.documentSpecs = specs
	out := make([]*entity.Document, 0, len(r.db.documents))
	for _, d := range r.db.documents {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type memChunks struct{ db *memDB }

func (r memChunks) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failChunks != nil {
		return r.db.failChunks
	}
	for _, c := range chunks {
		r.db.nextChunk++
		c.Id = r.db.nextChunk
		cp := *c
		r.db.chunks = append(r.db.chunks, &cp)
	}
	return nil
}

func chunkMatches(c *entity.Chunk, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByStatuses:
			found := false
			for _, st := range s.Statuses {
				found = found || c.Status == st
			}
			if !found {
				return false
			}
		case specification.ByDocumentIds:
			found := false
			for _, id := range s.Ids {
				found = found || c.DocumentId == id
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (r memChunks) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Chunk
	for _, c := range r.db.chunks {
		if chunkMatches(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memChunks) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	chunks, err := r.FindAll(ctx, specs...)
	return int64(len(chunks)), err
}

func (r memChunks) MarkEmbedded(ctx context.Context, id int64, vector []float32) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failMarkChunks[id] {
		return errors.New("connection reset")
	}
	c := r.db.chunkByID(id)
	if c == nil {
		return errors.New("chunk not found")
	}
	c.EmbeddingVector = vector
	c.Status = "embedded"
	c.LastError = nil
	return nil
}

func (r memChunks) MarkFailed(ctx context.Context, id int64, reason string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := r.db.chunkByID(id)
	if c == nil {
		return errors.New("chunk not found")
	}
	c.Status = "failed"
	c.LastError = &reason
	return nil
}

func (r memChunks) SearchNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredChunk, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.nearestLimit = limit
	return r.db.nearest, nil
}

type memCitations struct{ db *memDB }

func (r memCitations) CreateBulk(ctx context.Context, citations []*entity.Citation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, c := range citations {
		c.Id = int64(len(r.db.citations) + i + 1)
	}
	r.db.citations = append(r.db.citations, citations...)
	return nil
}

type memIndexes struct{ db *memDB }

func (r memIndexes) FindByName(ctx context.Context, name string) (*entity.RagIndex, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.indexes[name], nil
}

func (r memIndexes) Ensure(ctx context.Context, index *entity.RagIndex) (*entity.RagIndex, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if existing, ok := r.db.indexes[index.Name]; ok {
		return existing, nil
	}
	r.db.indexes[index.Name] = index
	return index, nil
}

// fakeEmbedder returns a vector of the configured dimension, or the result of fn.
type fakeEmbedder struct {
	mu        sync.Mutex
	dimension int
	calls     []string
	tasks     []string
	fn        func(text string) ([]float32, error)
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.tasks = append(f.tasks, taskType)
	f.mu.Unlock()

	if f.fn != nil {
		values, err := f.fn(text)
		if err != nil {
			return nil, err
		}
		return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: values}}, nil
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: make([]float32, f.dimension)}}, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

type fakeIndexer struct {
	mu    sync.Mutex
	calls []IndexOptions
	err   error
}

func (f *fakeIndexer) IndexPending(ctx context.Context, opts IndexOptions) (*IndexReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &IndexReport{Total: 1, Embedded: 1}, nil
}

func nopLogger() logger.ILogger {
	return logger.NewNopLogger()
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
