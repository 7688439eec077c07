package middlewares

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// raci: a string field holding one RACI letter.
	_ = v.RegisterValidation("raci", func(fl validator.FieldLevel) bool {
		return models.RACI(fl.Field().String()).Valid()
	})
	// lookup_kind: a known lookup catalog name.
	_ = v.RegisterValidation("lookup_kind", func(fl validator.FieldLevel) bool {
		return models.LookupKind(fl.Field().String()).Valid()
	})
	return v
}

// BindAndValidate parses the request body into dst and validates it.
// Returns fiber.ErrBadRequest for parse errors and a validator.ValidationErrors for validation issues.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return validate.Struct(dst)
}

// ValidateStruct validates any struct value using the shared validator instance.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

// ValidateVar validates a single value against a tag list.
func ValidateVar(v interface{}, tag string) error {
	return validate.Var(v, tag)
}
