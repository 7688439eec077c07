package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
)

// RequestTx opens a per-request DB transaction.
// Order: run AFTER Idempotency() (so idempotency records aren't tied to the handler TX).
// Every write and the situation derivation it triggers commit or roll back together.
// Work queued with database.AfterCommit runs only once the commit succeeded.
func RequestTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		ctx, queue := database.WithCommitQueue(c.UserContext())
		c.SetUserContext(ctx)

		tx := database.DB.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		// Ensure we always cleanup.
		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				queue.Discard()
				panic(r) // re-panic after rollback so Fiber's handler can catch
			}
			if err != nil {
				_ = tx.Rollback()
				queue.Discard()
				return
			}
			if e := tx.Commit().Error; e != nil {
				queue.Discard()
				logger.FromCtx(c).Error("tx commit failed", zap.Error(e))
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
				return
			}
			queue.Run(ctx, database.DB.WithContext(ctx))
		}()

		// Make the TX available to handlers via database.GetDB(c).
		c.Locals("tx", tx)

		err = c.Next()
		return err
	}
}
