package controllers

import (
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/services"
)

// GET /api/suppliers/:id/situation
func (h *Handler) GetSituation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Suppliers.Get(db, id); err != nil {
		return err
	}
	cur, err := h.svc.Situations.Current(db, id)
	if err != nil {
		return err
	}
	if cur == nil || cur.Status == nil {
		return &services.Error{Kind: services.KindNotFound, Message: "supplier has no situation yet"}
	}
	body := fiber.Map{
		"supplier_id": id,
		"status":      cur.Status.Name,
		"since":       cur.CreatedAt,
	}
	if cur.Status.Reason != "" {
		body["reason"] = cur.Status.Reason
	}
	return c.JSON(body)
}

// GET /api/suppliers/:id/situation/history
func (h *Handler) GetSituationHistory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Suppliers.Get(db, id); err != nil {
		return err
	}
	rows, err := h.svc.Situations.History(db, id)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}
