package controllers

import (
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/models"
)

// MatrixDTO carries activity -> role -> letter. Omitted cells keep their current (or default) value.
type MatrixDTO struct {
	Assignments models.Assignments `json:"assignments" validate:"omitempty,dive,dive,raci"`
}

// GET /api/responsibility-matrix/catalog
func (h *Handler) MatrixCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"activities": models.Activities,
		"roles":      models.Roles,
		"letters":    models.RACILetters,
		"defaults":   models.DefaultAssignments(),
		"rule":       h.svc.Checker.Rule,
	})
}

// POST /api/suppliers/:id/responsibility-matrix
func (h *Handler) CreateMatrix(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in MatrixDTO
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &in); err != nil {
			return err
		}
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Matrices.Create(c.UserContext(), db, id, in.Assignments)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(matrixView(out, h.svc.Checker.Rule))
}

// GET /api/suppliers/:id/responsibility-matrix
func (h *Handler) GetMatrix(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Matrices.Get(db, id)
	if err != nil {
		return err
	}
	return c.JSON(matrixView(out, h.svc.Checker.Rule))
}

// PATCH /api/suppliers/:id/responsibility-matrix
func (h *Handler) UpdateMatrix(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in MatrixDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Matrices.Update(c.UserContext(), db, id, in.Assignments)
	if err != nil {
		return err
	}
	return c.JSON(matrixView(out, h.svc.Checker.Rule))
}

func matrixView(m *models.ResponsibilityMatrix, rule models.CompletenessRule) fiber.Map {
	return fiber.Map{
		"id":          m.ID,
		"supplier_id": m.SupplierID,
		"assignments": m.Assignments.Data(),
		"complete":    m.IsComplete(rule),
		"updated_at":  m.UpdatedAt,
	}
}
