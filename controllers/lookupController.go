package controllers

import (
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/models"
)

type LookupCreateDTO struct {
	Kind string `json:"kind" validate:"required,lookup_kind"`
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// GET /api/lookups?kind=risk_level
func (h *Handler) ListLookups(c *fiber.Ctx) error {
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Lookups.List(db, models.LookupKind(c.Query("kind")))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/lookups
func (h *Handler) CreateLookup(c *fiber.Ctx) error {
	var in LookupCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Lookups.Create(db, models.LookupKind(in.Kind), in.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DELETE /api/lookups/:id
func (h *Handler) DeleteLookup(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	if err := h.svc.Lookups.Delete(db, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
