package dto

import "github.com/google/uuid"

type ListCoursesRequest struct {
	Department string `query:"department"`
	Campus     string `query:"campus"`
	Limit      *int   `query:"limit" validate:"omitempty,gt=0,lte=200"`
}

type CourseResponse struct {
	DocumentId  uuid.UUID `json:"document_id"`
	CourseCode  string    `json:"course_code"`
	Title       string    `json:"title"`
	Department  string    `json:"department,omitempty"`
	Campus      string    `json:"campus,omitempty"`
	Units       string    `json:"units,omitempty"`
	Description string    `json:"description,omitempty"`
}

type SemanticSearchRequest struct {
	Query     string   `query:"q" validate:"required"`
	TopK      *int     `query:"top_k" validate:"omitempty,gt=0,lte=50"`
	Threshold *float64 `query:"threshold" validate:"omitempty,gte=0,lte=1"`
}

type SemanticSearchResponse struct {
	ChunkId    int64          `json:"chunk_id"`
	DocumentId uuid.UUID      `json:"document_id"`
	Title      string         `json:"title"`
	CourseCode string         `json:"course_code,omitempty"`
	SourceName string         `json:"source_name,omitempty"`
	Content    string         `json:"content"`
	Payload    map[string]any `json:"payload,omitempty"`
	Similarity float64        `json:"similarity"`
}
