package routes

import (
	"github.com/gofiber/fiber/v2"

	"supplier-compliance-backend/controllers"
	"supplier-compliance-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, h *controllers.Handler) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", middlewares.RequestTx(), controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Emailed decision links carry their own signed token.
	api.Post("/approval/decide", middlewares.RequestTx(), h.DecideFromLink)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction (commits/rolls back writes and derived situations together)
	protected.Use(middlewares.RequestTx())

	// Lookups
	protected.Get("/lookups", h.ListLookups)
	protected.Post("/lookups", h.CreateLookup)
	protected.Delete("/lookups/:id", h.DeleteLookup)

	// Suppliers
	protected.Post("/suppliers", h.CreateSupplier)
	protected.Get("/suppliers", h.ListSuppliers)
	protected.Get("/suppliers/:id", h.GetSupplier)
	protected.Patch("/suppliers/:id", h.UpdateSupplier)
	protected.Delete("/suppliers/:id", h.DeleteSupplier)
	protected.Get("/suppliers/:id/readiness", h.GetReadiness)
	protected.Get("/suppliers/:id/situation", h.GetSituation)
	protected.Get("/suppliers/:id/situation/history", h.GetSituationHistory)
	protected.Get("/suppliers/:id/evaluations", h.ListEvaluations)
	protected.Post("/suppliers/:id/evaluations", h.RecordEvaluation)
	protected.Put("/suppliers/:id/:part", h.SavePart)

	// Responsibility matrix
	protected.Get("/responsibility-matrix/catalog", h.MatrixCatalog)
	protected.Post("/suppliers/:id/responsibility-matrix", h.CreateMatrix)
	protected.Get("/suppliers/:id/responsibility-matrix", h.GetMatrix)
	protected.Patch("/suppliers/:id/responsibility-matrix", h.UpdateMatrix)

	// Supplier evaluation
	protected.Get("/evaluation/criteria", h.ListCriteria)
	protected.Post("/evaluation/criteria", h.CreateCriterion)
	protected.Get("/evaluation/periods", h.ListPeriods)
	protected.Post("/evaluation/periods", h.OpenPeriodYear)
	protected.Get("/evaluation/periods/current", h.CurrentPeriod)

	// Attachments
	protected.Get("/attachment-types", h.ListAttachmentTypes)
	protected.Post("/attachment-types", h.CreateAttachmentType)
	protected.Get("/suppliers/:id/attachments", h.ListAttachments)
	protected.Post("/suppliers/:id/attachments", h.UploadAttachment)
	protected.Get("/suppliers/:id/attachments/report", h.AttachmentReport)
	protected.Get("/suppliers/:id/attachments/:attachmentId/file", h.DownloadAttachment)
	protected.Delete("/suppliers/:id/attachments/:attachmentId", h.DeleteAttachment)

	// Approval workflow
	protected.Get("/approval/steps", h.ListSteps)
	protected.Post("/approval/steps", h.CreateStep)
	protected.Put("/approval/steps/:id", h.UpdateStep)
	protected.Delete("/approval/steps/:id", h.DeleteStep)
	protected.Post("/suppliers/:id/approval", h.StartFlow)
	protected.Get("/suppliers/:id/approval", h.GetFlowState)
	protected.Post("/approval/flows/:flowId/assign", h.AssignResponsible)
	protected.Post("/approval/flows/:flowId/decide", h.DecideStep)
}
