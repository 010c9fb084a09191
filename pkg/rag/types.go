package rag

import "github.com/google/uuid"

// SearchResult is one retrieved chunk. Payload is set when the chunk text is a JSON object.
type SearchResult struct {
	ChunkId    int64
	DocumentId uuid.UUID
	Content    string
	Payload    map[string]any
	SourceName string
	CourseCode string
	Title      string
	Similarity float64
}

// CourseListing is one row of the structured course listing.
type CourseListing struct {
	DocumentId  uuid.UUID
	CourseCode  string
	Title       string
	Department  string
	Campus      string
	Units       string
	Description string
}

// ListCoursesQuery filters the course listing. Nil fields are unset.
type ListCoursesQuery struct {
	Department *string
	Campus     *string
	Limit      *int
}

// Defaults shared by the tools and the HTTP endpoints.
const (
	DefaultListLimit       = 20
	DefaultSearchTopK      = 5
	DefaultSearchThreshold = 0.3
)
