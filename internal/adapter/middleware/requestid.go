package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"medquote-backend/internal/infrastructure/logger"
)

// RequestID keeps a caller-supplied X-Request-ID when it looks sane and mints
// a uuid otherwise. The id is echoed back and picked up by the request logger.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := strings.TrimSpace(c.Request().Header.Get(logger.RequestIDKey))
			if rid == "" || len(rid) > 64 {
				rid = uuid.NewString()
			}
			c.Request().Header.Set(logger.RequestIDKey, rid)
			c.Response().Header().Set(logger.RequestIDKey, rid)
			c.Set(logger.RequestIDKey, rid)
			return next(c)
		}
	}
}
