package controllers

import (
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/models"
	"supplier-compliance-backend/services"
	"supplier-compliance-backend/utils"
)

type SupplierCreateDTO struct {
	LegalName                     string `json:"legal_name" validate:"required,min=1,max=255"`
	TaxID                         string `json:"tax_id" validate:"required,min=11,max=16"`
	TradeName                     string `json:"trade_name" validate:"omitempty,max=255"`
	StateBusinessRegistration     string `json:"state_business_registration" validate:"omitempty,max=20"`
	MunicipalBusinessRegistration string `json:"municipal_business_registration" validate:"omitempty,max=20"`
	ClassificationID              *uint  `json:"classification_id" validate:"omitempty,gt=0"`
	CategoryID                    *uint  `json:"category_id" validate:"omitempty,gt=0"`
	RiskLevelID                   *uint  `json:"risk_level_id" validate:"omitempty,gt=0"`
	TypeID                        *uint  `json:"type_id" validate:"omitempty,gt=0"`
}

type SupplierUpdateDTO struct {
	LegalName                     *string `json:"legal_name" validate:"omitempty,min=1,max=255"`
	TaxID                         *string `json:"tax_id" validate:"omitempty,min=11,max=16"`
	TradeName                     *string `json:"trade_name" validate:"omitempty,max=255"`
	StateBusinessRegistration     *string `json:"state_business_registration" validate:"omitempty,max=20"`
	MunicipalBusinessRegistration *string `json:"municipal_business_registration" validate:"omitempty,max=20"`
	ClassificationID              *uint   `json:"classification_id" validate:"omitempty,gt=0"`
	CategoryID                    *uint   `json:"category_id" validate:"omitempty,gt=0"`
	RiskLevelID                   *uint   `json:"risk_level_id" validate:"omitempty,gt=0"`
	TypeID                        *uint   `json:"type_id" validate:"omitempty,gt=0"`
}

// POST /api/suppliers
func (h *Handler) CreateSupplier(c *fiber.Ctx) error {
	var in SupplierCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := dbFor(c)
	if err != nil {
		return err
	}

	supplier := models.Supplier{
		LegalName:                     in.LegalName,
		TaxID:                         in.TaxID,
		TradeName:                     in.TradeName,
		StateBusinessRegistration:     in.StateBusinessRegistration,
		MunicipalBusinessRegistration: in.MunicipalBusinessRegistration,
		ClassificationID:              in.ClassificationID,
		CategoryID:                    in.CategoryID,
		RiskLevelID:                   in.RiskLevelID,
		TypeID:                        in.TypeID,
	}
	if err := h.svc.Suppliers.Create(c.UserContext(), db, &supplier); err != nil {
		return err
	}
	out, err := h.svc.Suppliers.Get(db, supplier.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GET /api/suppliers
func (h *Handler) ListSuppliers(c *fiber.Ctx) error {
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Suppliers.List(db)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GET /api/suppliers/:id
func (h *Handler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Suppliers.Get(db, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// PATCH /api/suppliers/:id
func (h *Handler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var in SupplierUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Suppliers.Update(c.UserContext(), db, id, utils.UpdatesFromPtrDTO(&in, nil))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DELETE /api/suppliers/:id
func (h *Handler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	paths, err := h.svc.Suppliers.Delete(db, id)
	if err != nil {
		return err
	}
	h.removeFiles(c, paths...)
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/suppliers/:id/:part
// Creates or replaces one registration record (address, contact, payment-details, ...).
func (h *Handler) SavePart(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	part, err := services.NewPart(c.Params("part"))
	if err != nil {
		return err
	}
	if err := c.BodyParser(part); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizeDTO(part)

	db, err := dbFor(c)
	if err != nil {
		return err
	}
	if err := h.svc.Suppliers.SavePart(c.UserContext(), db, id, part); err != nil {
		return err
	}
	return c.JSON(part)
}

// GET /api/suppliers/:id/readiness
func (h *Handler) GetReadiness(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Checker.Readiness(db, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
