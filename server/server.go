package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"supplier-compliance-backend/config"
	"supplier-compliance-backend/controllers"
	"supplier-compliance-backend/database"
	"supplier-compliance-backend/logger"
	"supplier-compliance-backend/metrics"
	"supplier-compliance-backend/middlewares"
	"supplier-compliance-backend/notifications"
	"supplier-compliance-backend/routes"
	"supplier-compliance-backend/services"
	"supplier-compliance-backend/storage"
)

// New builds the HTTP application on top of an already migrated database.
func New(cfg *config.Config, db *gorm.DB, log *zap.Logger) *fiber.App {
	database.DB = db
	middlewares.SetJWTSecret(cfg.JWTSecret)

	tokens := notifications.NewTokens(cfg.JWTSecret, cfg.ApprovalToken.TTL)
	dispatcher := notifications.NewDispatcher(notifications.NewMailer(cfg.Mail, log), tokens, cfg.Server.AppURL)
	svc := services.New(cfg.Compliance.MatrixRule, dispatcher)
	h := controllers.New(svc, storage.NewLocalStore(cfg.Attachments.Dir), tokens)

	bodyLimit := cfg.Server.BodyLimitMB * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	app.Use(metrics.Middleware())

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter
	if cfg.Server.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Server.RateLimitMax,
			Expiration: cfg.Server.RateLimitWindow,
		}))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Register(app, h)
	return app
}
