package controllers

import (
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/models"
	"supplier-compliance-backend/utils"
)

type AttachmentTypeCreateDTO struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	RiskLevelID *uint  `json:"risk_level_id" validate:"omitempty,gt=0"`
}

// GET /api/attachment-types
func (h *Handler) ListAttachmentTypes(c *fiber.Ctx) error {
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Attachments.Types(db)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/attachment-types
func (h *Handler) CreateAttachmentType(c *fiber.Ctx) error {
	var in AttachmentTypeCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Attachments.CreateType(db, in.Name, in.RiskLevelID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GET /api/suppliers/:id/attachments
func (h *Handler) ListAttachments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Attachments.List(db, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/suppliers/:id/attachments (multipart: file, attachment_type_id, description)
// Uploading a type the supplier already has replaces the previous file.
func (h *Handler) UploadAttachment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	typeID, ok := utils.ParseID(c.FormValue("attachment_type_id"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid attachment_type_id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file")
	}

	path, err := h.store.Path(id, fh.Filename)
	if err != nil {
		return err
	}
	if err := c.SaveFile(fh, path); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not store file")
	}

	db, err := dbFor(c)
	if err != nil {
		_ = h.store.Remove(path)
		return err
	}
	att := models.SupplierAttachment{
		SupplierID:       id,
		AttachmentTypeID: typeID,
		FileName:         fh.Filename,
		StoragePath:      path,
		ContentType:      fh.Header.Get("Content-Type"),
		Size:             fh.Size,
		Description:      c.FormValue("description"),
	}
	old, err := h.svc.Attachments.Replace(c.UserContext(), db, &att)
	if err != nil {
		_ = h.store.Remove(path)
		return err
	}
	if old != nil && old.StoragePath != path {
		h.removeFiles(c, old.StoragePath)
	}
	return c.Status(fiber.StatusCreated).JSON(att)
}

// GET /api/suppliers/:id/attachments/:attachmentId/file
func (h *Handler) DownloadAttachment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	attID, err := paramID(c, "attachmentId")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	att, err := h.svc.Attachments.Get(db, id, attID)
	if err != nil {
		return err
	}
	return c.Download(att.StoragePath, att.FileName)
}

// DELETE /api/suppliers/:id/attachments/:attachmentId
func (h *Handler) DeleteAttachment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	attID, err := paramID(c, "attachmentId")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	att, err := h.svc.Attachments.Delete(c.UserContext(), db, id, attID)
	if err != nil {
		return err
	}
	h.removeFiles(c, att.StoragePath)
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/suppliers/:id/attachments/report
func (h *Handler) AttachmentReport(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Attachments.Report(db, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
