package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `validate:"required"`
	Role  string `validate:"oneof=user assistant"`
	Items []int  `validate:"min=1"`
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(sampleRequest{Role: "robot"})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "is required", ve.Errors["Name"])
	assert.Equal(t, "must be one of [user assistant]", ve.Errors["Role"])
	assert.Equal(t, "must have at least 1 item(s)", ve.Errors["Items"])

	assert.NoError(t, ValidateRequest(sampleRequest{Name: "x", Role: "user", Items: []int{1}}))
}

func TestErrorHandlerMiddleware_MapsErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid argument", fmt.Errorf("limit: %w", rag.ErrInvalidArgument), http.StatusBadRequest},
		{"index not configured", rag.ErrIndexNotConfigured, http.StatusServiceUnavailable},
		{"dimension mismatch", fmt.Errorf("query vector: %w", rag.ErrDimensionMismatch), http.StatusServiceUnavailable},
		{"embedding provider", fmt.Errorf("embed: %w", rag.ErrEmbeddingProvider), http.StatusBadGateway},
		{"oracle", rag.ErrOracle, http.StatusBadGateway},
		{"fiber error", fiber.NewError(http.StatusNotFound, "Not here"), http.StatusNotFound},
		{"unknown", errors.New("pq: connection reset by peer"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer res.Body.Close()

			assert.Equal(t, tc.code, res.StatusCode)
			var body BaseResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.code, body.Code)
			assert.NotContains(t, body.Message, "pq:")
		})
	}
}

func TestErrorHandlerMiddleware_ValidationBody(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{}) })

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Contains(t, body.Errors, "Name")
}
