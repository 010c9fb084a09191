package controller

import (
	"course-assistant-be/internal/constant"
	"course-assistant-be/internal/dto"
	"course-assistant-be/internal/pkg/serverutils"
	"course-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestService  service.IIngestService
	indexerService service.IIndexerService
	jwtSecret      string
}

func NewIngestController(ingestService service.IIngestService, indexerService service.IIndexerService, jwtSecret string) IIngestController {
	return &ingestController{
		ingestService:  ingestService,
		indexerService: indexerService,
		jwtSecret:      jwtSecret,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	// Per-route gate: a group-level Use would also cover /v1/courses and /v1/search.
	auth := serverutils.NewJwtMiddleware(c.jwtSecret)
	h := r.Group("/v1")
	h.Post("ingest", auth, c.Ingest)
	h.Post("index", auth, c.Index)
}

// Ingest stores the records synchronously. Embedding happens in the background.
func (c *ingestController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.IngestRecords(ctx.Context(), &req, constant.SourceTypeAPI)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success ingest records", res))
}

// Index embeds pending and failed chunks. force=true re-embeds everything.
func (c *ingestController) Index(ctx *fiber.Ctx) error {
	report, err := c.indexerService.IndexPending(ctx.Context(), service.IndexOptions{
		Force: ctx.QueryBool("force", false),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success index chunks", dto.IndexReportResponse{
		Total:    report.Total,
		Embedded: report.Embedded,
		Failed:   report.Failed,
		Skipped:  report.Skipped,
	}))
}
