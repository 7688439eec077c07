package middlewares

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-compliance-backend/services"
)

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"fiber", fiber.NewError(fiber.StatusTeapot, "tea"), fiber.StatusTeapot, `"tea"`},
		{"conflict", services.ErrFlowExists, fiber.StatusConflict, `"kind":"conflict"`},
		{"not found", services.ErrSupplierNotFound, fiber.StatusNotFound, "supplier not found"},
		{"precondition", services.ErrNoNextStep, fiber.StatusBadRequest, "last one"},
		{"validation", &services.Error{Kind: services.KindValidation, Field: "risk_assessment", Message: "bad"}, fiber.StatusUnprocessableEntity, `"field":"risk_assessment"`},
		{"unknown", errors.New("db exploded"), fiber.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			res, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			body, _ := io.ReadAll(res.Body)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Contains(t, string(body), tt.body)
			assert.NotContains(t, string(body), "exploded")
		})
	}
}

func TestBindAndValidate_CustomTags(t *testing.T) {
	type dto struct {
		Letter string `json:"letter" validate:"required,raci"`
		Kind   string `json:"kind" validate:"required,lookup_kind"`
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/", func(c *fiber.Ctx) error {
		var in dto
		if err := BindAndValidate(c, &in); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	send := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, fiber.StatusNoContent, send(`{"letter":"A/R","kind":"risk_level"}`).StatusCode)
	assert.Equal(t, fiber.StatusUnprocessableEntity, send(`{"letter":"Z","kind":"risk_level"}`).StatusCode)
	assert.Equal(t, fiber.StatusUnprocessableEntity, send(`{"letter":"A","kind":"colour"}`).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, send(`{`).StatusCode)
}
