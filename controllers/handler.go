package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/notifications"
	"supplier-compliance-backend/services"
	"supplier-compliance-backend/storage"
	"supplier-compliance-backend/utils"
)

// Handler carries the services the HTTP handlers call into.
type Handler struct {
	svc    *services.Services
	store  *storage.LocalStore
	tokens *notifications.Tokens
}

func New(svc *services.Services, store *storage.LocalStore, tokens *notifications.Tokens) *Handler {
	return &Handler{svc: svc, store: store, tokens: tokens}
}

func dbFor(c *fiber.Ctx) (*gorm.DB, error) {
	db, err := database.GetDB(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	return db, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, ok := utils.ParseID(c.Params(name))
	if !ok {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name+" in path")
	}
	return id, nil
}

// removeFiles deletes stored files once the request transaction has committed, so a rolled
// back request never leaves a row pointing at a missing file.
func (h *Handler) removeFiles(c *fiber.Ctx, paths ...string) {
	if len(paths) == 0 {
		return
	}
	remove := func(ctx context.Context, _ *gorm.DB) {
		for _, p := range paths {
			if err := h.store.Remove(p); err != nil {
				logger.FromContext(ctx).Warn("attachment file not removed", zap.String("path", p), zap.Error(err))
			}
		}
	}
	if !database.AfterCommit(c.UserContext(), remove) {
		remove(c.UserContext(), nil)
	}
}
