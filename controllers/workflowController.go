package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/notifications"
	"supplier-compliance-backend/services"
)

type StartFlowDTO struct {
	Approver     services.ApproverInput `json:"approver" validate:"required"`
	Observations string                 `json:"observations" validate:"omitempty,max=2000"`
}

type AssignResponsibleDTO struct {
	StepID       uint   `json:"step_id" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=254"`
	Observations string `json:"observations" validate:"omitempty,max=2000"`
}

type DecideDTO struct {
	Approved     *bool                   `json:"approved" validate:"required"`
	Approver     *services.ApproverInput `json:"approver" validate:"omitempty"`
	Observations string                  `json:"observations" validate:"omitempty,max=2000"`
}

// GET /api/approval/steps
func (h *Handler) ListSteps(c *fiber.Ctx) error {
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Steps.List(db)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/approval/steps
func (h *Handler) CreateStep(c *fiber.Ctx) error {
	var in services.StepInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Steps.Create(db, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PUT /api/approval/steps/:id
func (h *Handler) UpdateStep(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.StepInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Steps.Update(db, id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DELETE /api/approval/steps/:id
func (h *Handler) DeleteStep(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	if err := h.svc.Steps.Delete(db, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/suppliers/:id/approval
func (h *Handler) StartFlow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in StartFlowDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	flow, err := h.svc.Workflow.Start(c.UserContext(), db, id, in.Approver, in.Observations)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"flow_id":      flow.ID,
		"current_step": flow.Step,
		"flow":         flow,
	})
}

// GET /api/suppliers/:id/approval
func (h *Handler) GetFlowState(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Workflow.State(db, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/approval/flows/:flowId/assign
func (h *Handler) AssignResponsible(c *fiber.Ctx) error {
	flowID, err := paramID(c, "flowId")
	if err != nil {
		return err
	}
	var in AssignResponsibleDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Workflow.AssignResponsible(c.UserContext(), db, flowID, in.StepID,
		services.ApproverInput{Name: in.Name, Email: in.Email}, in.Observations)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/approval/flows/:flowId/decide
func (h *Handler) DecideStep(c *fiber.Ctx) error {
	flowID, err := paramID(c, "flowId")
	if err != nil {
		return err
	}
	var in DecideDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Workflow.Decide(c.UserContext(), db, flowID, *in.Approved, in.Approver, in.Observations)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// POST /api/approval/decide?token=...
// Public: the signed token from the notification email is the credential. It only works for
// the approver it was mailed to.
func (h *Handler) DecideFromLink(c *fiber.Ctx) error {
	claims, err := h.tokens.Parse(c.Query("token"))
	if err != nil {
		if errors.Is(err, notifications.ErrInvalidToken) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return err
	}
	db, err := dbFor(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Workflow.DecideAs(c.UserContext(), db, claims.FlowID, claims.ApproverID, claims.Action == notifications.ActionAccept)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
