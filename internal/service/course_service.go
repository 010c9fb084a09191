package service

import (
	"context"
	"fmt"

	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/repository/specification"
	"course-assistant-be/internal/repository/unitofwork"
	"course-assistant-be/pkg/rag"
	"course-assistant-be/pkg/rag/normalize"
)

// Raw record keys consulted for a listing. The bare course title is preferred
// over the composite document title, which already repeats the code.
var (
	courseTitleKeys       = []string{"course_title", "title", "program_name", "name"}
	courseDescriptionKeys = []string{"course_desc", "description", "program_desc", "summary"}
)

type ICourseService interface {
	ListCourses(ctx context.Context, query rag.ListCoursesQuery) ([]rag.CourseListing, error)
}

type courseService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewCourseService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) ICourseService {
	return &courseService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// ListCourses filters documents that carry a course code by case-insensitive
// substrings of department and campus, ordered by course code then insertion.
func (s *courseService) ListCourses(ctx context.Context, query rag.ListCoursesQuery) ([]rag.CourseListing, error) {
	limit := rag.DefaultListLimit
	if query.Limit != nil {
		if *query.Limit <= 0 {
			return nil, fmt.Errorf("%w: limit must be positive, got %d", rag.ErrInvalidArgument, *query.Limit)
		}
		limit = *query.Limit
	}

	specs := []specification.Specification{specification.HasCourseCode{}}
	if query.Department != nil && *query.Department != "" {
		specs = append(specs, specification.ContainsInsensitive{Field: "department", Value: *query.Department})
	}
	if query.Campus != nil && *query.Campus != "" {
		specs = append(specs, specification.ContainsInsensitive{Field: "campus", Value: *query.Campus})
	}
	specs = append(specs,
		specification.OrderBy{Field: "course_code"},
		specification.OrderBy{Field: "seq"},
		specification.Pagination{Limit: limit},
	)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		s.logger.Error("COURSE", "Failed to list courses", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("list courses: %w", err)
	}

	listings := make([]rag.CourseListing, 0, len(docs))
	for _, d := range docs {
		title := normalize.PickString(d.RawMetadata, courseTitleKeys...)
		if title == "" {
			title = d.Title
		}
		listings = append(listings, rag.CourseListing{
			DocumentId:  d.Id,
			CourseCode:  d.CourseCode,
			Title:       title,
			Department:  d.Department,
			Campus:      d.Campus,
			Units:       d.Units,
			Description: normalize.PickString(d.RawMetadata, courseDescriptionKeys...),
		})
	}
	return listings, nil
}
