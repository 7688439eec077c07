package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/services"
)

type PeriodYearDTO struct {
	Year int `json:"year" validate:"required,gte=2000,lte=9999"`
}

// GET /api/evaluation/criteria
func (h *Handler) ListCriteria(c *fiber.Ctx) error {
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.Criteria(db)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/evaluation/criteria
func (h *Handler) CreateCriterion(c *fiber.Ctx) error {
	var in services.CriterionInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.CreateCriterion(db, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GET /api/evaluation/periods?year=2026
func (h *Handler) ListPeriods(c *fiber.Ctx) error {
	year := 0
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid year")
		}
		year = y
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.Periods(db, year)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/evaluation/periods
func (h *Handler) OpenPeriodYear(c *fiber.Ctx) error {
	var in PeriodYearDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.OpenYear(db, in.Year)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GET /api/evaluation/periods/current
func (h *Handler) CurrentPeriod(c *fiber.Ctx) error {
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.CurrentPeriod(db)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/suppliers/:id/evaluations
func (h *Handler) RecordEvaluation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.EvaluationInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.Record(c.UserContext(), db, id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GET /api/suppliers/:id/evaluations
func (h *Handler) ListEvaluations(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Evaluations.ForSupplier(db, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
