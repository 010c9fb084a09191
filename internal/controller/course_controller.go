package controller

import (
	"course-assistant-be/internal/dto"
	"course-assistant-be/internal/pkg/serverutils"
	"course-assistant-be/internal/service"
	"course-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

type ICourseController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	SemanticSearch(ctx *fiber.Ctx) error
}

type courseController struct {
	courseService service.ICourseService
	searchService service.ISearchService
}

func NewCourseController(courseService service.ICourseService, searchService service.ISearchService) ICourseController {
	return &courseController{
		courseService: courseService,
		searchService: searchService,
	}
}

func (c *courseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1")
	h.Get("courses", c.List)
	h.Get("search", c.SemanticSearch)
}

func (c *courseController) List(ctx *fiber.Ctx) error {
	var req dto.ListCoursesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	query := rag.ListCoursesQuery{Limit: req.Limit}
	if req.Department != "" {
		query.Department = &req.Department
	}
	if req.Campus != "" {
		query.Campus = &req.Campus
	}

	rows, err := c.courseService.ListCourses(ctx.Context(), query)
	if err != nil {
		return err
	}

	res := make([]dto.CourseResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, dto.CourseResponse{
			DocumentId:  row.DocumentId,
			CourseCode:  row.CourseCode,
			Title:       row.Title,
			Department:  row.Department,
			Campus:      row.Campus,
			Units:       row.Units,
			Description: row.Description,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list courses", res))
}

func (c *courseController) SemanticSearch(ctx *fiber.Ctx) error {
	var req dto.SemanticSearchRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	topK := rag.DefaultSearchTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	threshold := rag.DefaultSearchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	results, err := c.searchService.Search(ctx.Context(), req.Query, topK, threshold)
	if err != nil {
		return err
	}

	res := make([]dto.SemanticSearchResponse, 0, len(results))
	for _, r := range results {
		res = append(res, dto.SemanticSearchResponse{
			ChunkId:    r.ChunkId,
			DocumentId: r.DocumentId,
			Title:      r.Title,
			CourseCode: r.CourseCode,
			SourceName: r.SourceName,
			Content:    r.Content,
			Payload:    r.Payload,
			Similarity: r.Similarity,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search courses", res))
}
