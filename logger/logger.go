package logger

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const localsKey = "logger"

type ctxKey struct{}

var log *zap.Logger

// Init initializes the global logger
func Init(level, env string) *zap.Logger {
	var logConfig zap.Config
	if env == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(lvl)

	l, err := logConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log = l
	return log
}

// L returns the global logger, falling back to a no-op logger before Init.
func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// Middleware logs every request and stores a request-scoped logger in c.Locals and the user context.
func Middleware(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, _ := c.Locals("requestid").(string)
		reqLogger := base.With(zap.String("request_id", requestID))
		c.Locals(localsKey, reqLogger)
		c.SetUserContext(WithContext(c.UserContext(), reqLogger))

		err := c.Next()

		fields := []zapcore.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			reqLogger.Warn("HTTP request failed", fields...)
		} else {
			reqLogger.Info("HTTP request completed", fields...)
		}
		return err
	}
}

// FromCtx returns the request-scoped logger.
func FromCtx(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(localsKey).(*zap.Logger); ok {
		return l
	}
	return L()
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or the global one.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return L()
}
