package serverutils

import (
	"errors"

	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into the BaseResponse envelope.
// Internal details are logged, never returned.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := classify(err)
		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse(validationErr.Errors))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, "Validation failed"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.Is(err, rag.ErrInvalidArgument):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, rag.ErrIndexNotConfigured), errors.Is(err, rag.ErrDimensionMismatch):
		return fiber.StatusServiceUnavailable, "Search index is not configured for the current embedding model"
	case errors.Is(err, rag.ErrEmbeddingProvider), errors.Is(err, rag.ErrOracle):
		return fiber.StatusBadGateway, "Upstream model service failed"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
