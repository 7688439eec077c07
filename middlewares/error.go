package middlewares

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/services"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Business errors
	var be *services.Error
	if errors.As(err, &be) {
		body := fiber.Map{"message": be.Message, "kind": be.Kind.String()}
		if be.Field != "" {
			body["field"] = be.Field
		}
		return c.Status(statusFor(be.Kind)).JSON(body)
	}

	// 4) Unknown errors (500)
	logger.FromCtx(c).Error("internal error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

func statusFor(k services.Kind) int {
	switch k {
	case services.KindConflict:
		return fiber.StatusConflict
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindValidation:
		return fiber.StatusUnprocessableEntity
	case services.KindPrecondition:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}
