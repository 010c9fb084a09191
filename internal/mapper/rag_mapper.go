package mapper

import (
	"encoding/json"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type SourceMapper struct{}

func NewSourceMapper() *SourceMapper {
	return &SourceMapper{}
}

func (m *SourceMapper) ToEntity(s *model.Source) *entity.Source {
	if s == nil {
		return nil
	}
	return &entity.Source{
		Id:        s.Id,
		Name:      s.Name,
		Type:      s.Type,
		Url:       s.Url,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *SourceMapper) ToModel(s *entity.Source) *model.Source {
	if s == nil {
		return nil
	}
	return &model.Source{
		Id:        s.Id,
		Name:      s.Name,
		Type:      s.Type,
		Url:       s.Url,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:          d.Id,
		Seq:         d.Seq,
		Title:       d.Title,
		Content:     d.Content,
		RawMetadata: jsonToMap(d.RawMetadata),
		ContentHash: d.ContentHash,
		SourceId:    d.SourceId,
		CourseCode:  d.CourseCode,
		Department:  d.Department,
		Campus:      d.Campus,
		Units:       d.Units,
		CreatedAt:   d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:          d.Id,
		Seq:         d.Seq,
		Title:       d.Title,
		Content:     d.Content,
		RawMetadata: mapToJSON(d.RawMetadata),
		ContentHash: d.ContentHash,
		SourceId:    d.SourceId,
		CourseCode:  d.CourseCode,
		Department:  d.Department,
		Campus:      d.Campus,
		Units:       d.Units,
		CreatedAt:   d.CreatedAt,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}
	var vec []float32
	if c.EmbeddingVector != nil {
		vec = c.EmbeddingVector.Slice()
	}
	return &entity.Chunk{
		Id:              c.Id,
		DocumentId:      c.DocumentId,
		ChunkIndex:      c.ChunkIndex,
		Text:            c.Text,
		EmbeddingVector: vec,
		Status:          c.Status,
		TokenCount:      c.TokenCount,
		LastError:       c.LastError,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}
	var vec *pgvector.Vector
	if len(c.EmbeddingVector) > 0 {
		v := pgvector.NewVector(c.EmbeddingVector)
		vec = &v
	}
	return &model.Chunk{
		Id:              c.Id,
		DocumentId:      c.DocumentId,
		ChunkIndex:      c.ChunkIndex,
		Text:            c.Text,
		EmbeddingVector: vec,
		Status:          c.Status,
		TokenCount:      c.TokenCount,
		LastError:       c.LastError,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.Chunk {
	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}

type CitationMapper struct{}

func NewCitationMapper() *CitationMapper {
	return &CitationMapper{}
}

func (m *CitationMapper) ToEntity(c *model.Citation) *entity.Citation {
	if c == nil {
		return nil
	}
	return &entity.Citation{
		Id:        c.Id,
		ChunkId:   c.ChunkId,
		SourceId:  c.SourceId,
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
	}
}

func (m *CitationMapper) ToModel(c *entity.Citation) *model.Citation {
	if c == nil {
		return nil
	}
	return &model.Citation{
		Id:        c.Id,
		ChunkId:   c.ChunkId,
		SourceId:  c.SourceId,
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
	}
}

type RagIndexMapper struct{}

func NewRagIndexMapper() *RagIndexMapper {
	return &RagIndexMapper{}
}

func (m *RagIndexMapper) ToEntity(r *model.RagIndex) *entity.RagIndex {
	if r == nil {
		return nil
	}
	return &entity.RagIndex{
		Id:             r.Id,
		Name:           r.Name,
		EmbeddingModel: r.EmbeddingModel,
		Dimension:      r.Dimension,
		Description:    r.Description,
		Config:         jsonToMap(r.Config),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (m *RagIndexMapper) ToModel(r *entity.RagIndex) *model.RagIndex {
	if r == nil {
		return nil
	}
	return &model.RagIndex{
		Id:             r.Id,
		Name:           r.Name,
		EmbeddingModel: r.EmbeddingModel,
		Dimension:      r.Dimension,
		Description:    r.Description,
		Config:         mapToJSON(r.Config),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func jsonToMap(raw datatypes.JSON) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func mapToJSON(m map[string]any) datatypes.JSON {
	if m == nil {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
