package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-assistant-be/pkg/llm"
	"course-assistant-be/pkg/rag"
	"course-assistant-be/pkg/rag/format"
)

type fakeLister struct {
	got  rag.ListCoursesQuery
	rows []rag.CourseListing
	err  error
}

func (f *fakeLister) ListCourses(ctx context.Context, q rag.ListCoursesQuery) ([]rag.CourseListing, error) {
	f.got = q
	return f.rows, f.err
}

type fakeSearcher struct {
	query     string
	topK      int
	threshold float64
	results   []rag.SearchResult
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, topK int, threshold float64) ([]rag.SearchResult, error) {
	f.query, f.topK, f.threshold = query, topK, threshold
	return f.results, f.err
}

func TestRegistry_SchemasKeepOrder(t *testing.T) {
	r := NewRegistry(
		NewListCoursesTool(&fakeLister{}, ""),
		NewSearchKnowledgeBaseTool(&fakeSearcher{}, "", 5, 0.3),
	)

	schemas := r.Schemas()

	require.Len(t, schemas, 2)
	assert.Equal(t, ListCoursesName, schemas[0].Name)
	assert.Equal(t, SearchKnowledgeBaseName, schemas[1].Name)
	assert.True(t, json.Valid(schemas[0].Parameters))
	assert.True(t, json.Valid(schemas[1].Parameters))
	assert.Equal(t, DefaultListCoursesDescription, schemas[0].Description)
}

func TestRegistry_UnknownTool(t *testing.T) {
	_, err := NewRegistry().Execute(context.Background(), llm.ToolCall{Name: "weather"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "weather")
}

func TestListCourses_PassesFilters(t *testing.T) {
	lister := &fakeLister{rows: []rag.CourseListing{{CourseCode: "COM 2158", Title: "Intro to Networks"}}}
	r := NewRegistry(NewListCoursesTool(lister, ""))

	out, err := r.Execute(context.Background(), llm.ToolCall{
		Name:      ListCoursesName,
		Arguments: json.RawMessage(`{"department":"Advanced Technology","campus":"  ","limit":5}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "[1] COM 2158 - Intro to Networks", out)
	require.NotNil(t, lister.got.Department)
	assert.Equal(t, "Advanced Technology", *lister.got.Department)
	assert.Nil(t, lister.got.Campus)
	require.NotNil(t, lister.got.Limit)
	assert.Equal(t, 5, *lister.got.Limit)
}

func TestListCourses_NoArgumentsUsesDefaults(t *testing.T) {
	lister := &fakeLister{}
	tool := NewListCoursesTool(lister, "")

	out, err := tool.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, format.NoCourses, out)
	assert.Nil(t, lister.got.Limit)
}

func TestListCourses_RejectsFractionalLimit(t *testing.T) {
	tool := NewListCoursesTool(&fakeLister{}, "")

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"limit":2.5}`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, rag.ErrInvalidArgument))
}

func TestListCourses_HidesStorageError(t *testing.T) {
	tool := NewListCoursesTool(&fakeLister{err: fmt.Errorf("pq: connection reset")}, "")

	_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pq:")
}

func TestSearchKnowledgeBase(t *testing.T) {
	searcher := &fakeSearcher{results: []rag.SearchResult{{SourceName: "catalog", CourseCode: "COM 2158", Content: "Prerequisite: COM 1100"}}}
	tool := NewSearchKnowledgeBaseTool(searcher, "", 5, 0.3)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"prerequisites for COM 2158"}`))

	require.NoError(t, err)
	assert.Equal(t, "[1] | catalog | COM 2158\nPrerequisite: COM 1100", out)
	assert.Equal(t, "prerequisites for COM 2158", searcher.query)
	assert.Equal(t, 5, searcher.topK)
	assert.Equal(t, 0.3, searcher.threshold)
}

func TestSearchKnowledgeBase_BadArguments(t *testing.T) {
	tool := NewSearchKnowledgeBaseTool(&fakeSearcher{}, "", 5, 0.3)

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"query":`))
	assert.True(t, errors.Is(err, rag.ErrInvalidArgument))

	_, err = tool.Execute(context.Background(), json.RawMessage(`{"query":"   "}`))
	assert.True(t, errors.Is(err, rag.ErrInvalidArgument))
}
