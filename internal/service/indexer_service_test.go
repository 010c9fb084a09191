package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"course-assistant-be/internal/entity"
	"course-assistant-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChunks(db *memDB, documentId uuid.UUID, texts ...string) {
	for i, text := range texts {
		db.nextChunk++
		db.chunks = append(db.chunks, &entity.Chunk{
			Id:         db.nextChunk,
			DocumentId: documentId,
			ChunkIndex: i,
			Text:       text,
			Status:     "pending",
		})
	}
}

func TestIndexPending_EmbedsAndSkipsOnRerun(t *testing.T) {
	db := newMemDB()
	seedChunks(db, uuid.New(), "alpha", "beta", "gamma")
	embedder := &fakeEmbedder{dimension: 4}
	indexer := NewIndexerService(memFactory{db}, embedder, 4, 2, 0, nopLogger())

	report, err := indexer.IndexPending(context.Background(), IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, &IndexReport{Total: 3, Embedded: 3}, report)
	for _, c := range db.chunks {
		assert.Equal(t, "embedded", c.Status)
		assert.Len(t, c.EmbeddingVector, 4)
	}
	assert.ElementsMatch(t, []string{"RETRIEVAL_DOCUMENT", "RETRIEVAL_DOCUMENT", "RETRIEVAL_DOCUMENT"}, embedder.tasks)

	again, err := indexer.IndexPending(context.Background(), IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, &IndexReport{Total: 3, Skipped: 3}, again)
	assert.Len(t, embedder.calls, 3, "embedded chunks are not re-embedded")
}

func TestIndexPending_FailureIsolatedAndRetried(t *testing.T) {
	db := newMemDB()
	seedChunks(db, uuid.New(), "good one", "boom", "good two")
	broken := true
	embedder := &fakeEmbedder{fn: func(text string) ([]float32, error) {
		if strings.Contains(text, "boom") && broken {
			return nil, rag.ErrEmbeddingProvider
		}
		return []float32{0.1, 0.2, 0.3}, nil
	}}
	indexer := NewIndexerService(memFactory{db}, embedder, 3, 1, 0, nopLogger())

	report, err := indexer.IndexPending(context.Background(), IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Embedded)
	assert.Equal(t, 1, report.Failed)
	failed := db.chunkByID(2)
	assert.Equal(t, "failed", failed.Status)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, "embedding provider error")

	broken = false
	retry, err := indexer.IndexPending(context.Background(), IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, &IndexReport{Total: 3, Embedded: 1, Skipped: 2}, retry)
	assert.Equal(t, "embedded", failed.Status)
	assert.Nil(t, failed.LastError)
}

func TestIndexPending_DimensionMismatchFails(t *testing.T) {
	db := newMemDB()
	seedChunks(db, uuid.New(), "alpha")
	embedder := &fakeEmbedder{dimension: 3}
	indexer := NewIndexerService(memFactory{db}, embedder, 4, 1, 0, nopLogger())

	report, err := indexer.IndexPending(context.Background(), IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Nil(t, db.chunks[0].EmbeddingVector, "never truncated or padded")
	assert.Contains(t, *db.chunks[0].LastError, "dimension mismatch")
}

func TestIndexPending_StorageFailureMarksChunk(t *testing.T) {
	db := newMemDB()
	seedChunks(db, uuid.New(), "alpha")
	db.failMarkChunks[1] = true
	indexer := NewIndexerService(memFactory{db}, &fakeEmbedder{dimension: 2}, 2, 1, 0, nopLogger())

	report, err := indexer.IndexPending(context.Background(), IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "failed", db.chunks[0].Status)
}

func TestIndexPending_ForceAndDocumentScope(t *testing.T) {
	db := newMemDB()
	docA, docB := uuid.New(), uuid.New()
	seedChunks(db, docA, "a1", "a2")
	seedChunks(db, docB, "b1")
	embedder := &fakeEmbedder{dimension: 2}
	indexer := NewIndexerService(memFactory{db}, embedder, 2, 4, 1000, nopLogger())
	ctx := context.Background()

	scoped, err := indexer.IndexPending(ctx, IndexOptions{DocumentIds: []uuid.UUID{docB}})
	require.NoError(t, err)
	assert.Equal(t, &IndexReport{Total: 1, Embedded: 1}, scoped)
	assert.Equal(t, "pending", db.chunks[0].Status)

	_, err = indexer.IndexPending(ctx, IndexOptions{})
	require.NoError(t, err)

	forced, err := indexer.IndexPending(ctx, IndexOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, &IndexReport{Total: 3, Embedded: 3}, forced)
	assert.Len(t, embedder.calls, 6)
}

func TestIndexPending_Cancelled(t *testing.T) {
	db := newMemDB()
	seedChunks(db, uuid.New(), "alpha", "beta")
	indexer := NewIndexerService(memFactory{db}, &fakeEmbedder{dimension: 2}, 2, 1, 0.001, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := indexer.IndexPending(ctx, IndexOptions{})

	assert.True(t, errors.Is(err, context.Canceled))
	for _, c := range db.chunks {
		assert.Equal(t, "pending", c.Status)
	}
}
