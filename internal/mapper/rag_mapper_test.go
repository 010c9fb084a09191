package mapper

import (
	"testing"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMapper_NilVectorStaysNil(t *testing.T) {
	m := NewChunkMapper()

	mdl := m.ToModel(&entity.Chunk{Id: 7, Text: "x", Status: model.ChunkStatusPending})

	assert.Nil(t, mdl.EmbeddingVector)
	assert.Nil(t, m.ToEntity(mdl).EmbeddingVector)
}

func TestChunkMapper_VectorSurvives(t *testing.T) {
	m := NewChunkMapper()

	back := m.ToEntity(m.ToModel(&entity.Chunk{EmbeddingVector: []float32{0.5, -0.5}}))

	assert.Equal(t, []float32{0.5, -0.5}, back.EmbeddingVector)
}

func TestDocumentMapper_RawMetadata(t *testing.T) {
	m := NewDocumentMapper()
	src := uuid.New()

	mdl := m.ToModel(&entity.Document{
		Title:       "COM 2158",
		RawMetadata: map[string]any{"course_code": "COM 2158", "num_units": 3.0},
		SourceId:    &src,
	})
	require.NotEmpty(t, mdl.RawMetadata)

	back := m.ToEntity(mdl)
	assert.Equal(t, "COM 2158", back.RawMetadata["course_code"])
	assert.Equal(t, 3.0, back.RawMetadata["num_units"])
	assert.Equal(t, src, *back.SourceId)
}
