package logger

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const RequestIDKey = "X-Request-ID"

type ctxKey int

const loggerKey ctxKey = iota

// nop until Init is called, so packages and tests can log freely
var log = zap.NewNop()

// Init builds the process logger. env "production" gives JSON output.
func Init(env, level string) error {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.Fields(zap.String("service", "medquote-api")))
	if err != nil {
		return err
	}
	Set(l)
	l.Info("logger initialized", zap.String("level", lvl.String()))
	return nil
}

// Set replaces the process logger; tests use it with zaptest/observer.
func Set(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
}

func L() *zap.Logger { return log }

func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Ctx returns the request-scoped logger carried by ctx, or the process logger.
func Ctx(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
			return l
		}
	}
	return log
}

func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}
	return Ctx(c.Request().Context())
}

// Middleware attaches a request-scoped logger (echo and Go context) and logs
// one line per request.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID, _ := c.Get(RequestIDKey).(string)
			if requestID == "" {
				requestID = c.Request().Header.Get(RequestIDKey)
			}
			l := log.With(zap.String("request_id", requestID))
			c.Set("logger", l)
			c.SetRequest(c.Request().WithContext(WithLogger(c.Request().Context(), l)))

			err := next(c)

			fields := []zapcore.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
				FromContext(c).Error("http request failed", fields...)
			} else {
				FromContext(c).Info("http request completed", fields...)
			}
			return err
		}
	}
}
