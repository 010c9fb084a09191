package service

import (
	"context"
	"errors"
	"testing"

	"course-assistant-be/internal/entity"
	"course-assistant-be/internal/repository/specification"
	"course-assistant-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCourses_DefaultsAndFilters(t *testing.T) {
	db := newMemDB()
	db.documents = []*entity.Document{{
		Id:         uuid.New(),
		Title:      "COM 2158 — Intro to Networks",
		CourseCode: "COM 2158",
		Department: "Pacific Center for Advanced Technology Training",
		Campus:     "Honolulu",
		Units:      "3",
		RawMetadata: map[string]any{
			"course_title": "Intro to Networks",
			"course_desc":  "Routing and switching.",
		},
	}}
	svc := NewCourseService(memFactory{db}, nopLogger())
	department := "advanced technology"

	rows, err := svc.ListCourses(context.Background(), rag.ListCoursesQuery{Department: &department})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Intro to Networks", rows[0].Title)
	assert.Equal(t, "Routing and switching.", rows[0].Description)
	assert.Equal(t, "Honolulu", rows[0].Campus)

	assert.Contains(t, db.documentSpecs, specification.HasCourseCode{})
	assert.Contains(t, db.documentSpecs, specification.ContainsInsensitive{Field: "department", Value: "advanced technology"})
	assert.Contains(t, db.documentSpecs, specification.Pagination{Limit: rag.DefaultListLimit})
	assert.NotContains(t, db.documentSpecs, specification.ContainsInsensitive{Field: "campus", Value: ""})

	n := len(db.documentSpecs)
	assert.Equal(t, specification.OrderBy{Field: "course_code"}, db.documentSpecs[n-3])
	assert.Equal(t, specification.OrderBy{Field: "seq"}, db.documentSpecs[n-2])
}

func TestListCourses_FallsBackToDocumentTitle(t *testing.T) {
	db := newMemDB()
	db.documents = []*entity.Document{{Id: uuid.New(), Title: "Network Technician", CourseCode: "NET 100"}}
	svc := NewCourseService(memFactory{db}, nopLogger())

	rows, err := svc.ListCourses(context.Background(), rag.ListCoursesQuery{})

	require.NoError(t, err)
	assert.Equal(t, "Network Technician", rows[0].Title)
	assert.Empty(t, rows[0].Description)
}

func TestListCourses_RejectsNonPositiveLimit(t *testing.T) {
	svc := NewCourseService(memFactory{newMemDB()}, nopLogger())

	for _, limit := range []int{0, -3} {
		l := limit
		_, err := svc.ListCourses(context.Background(), rag.ListCoursesQuery{Limit: &l})
		assert.True(t, errors.Is(err, rag.ErrInvalidArgument))
	}
}
