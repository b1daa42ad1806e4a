package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medquote-backend/internal/domain/errs"
	"medquote-backend/internal/infrastructure/logger"
)

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindUnauthenticated:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindInvalid:
		return http.StatusUnprocessableEntity
	case errs.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an ErrorResponse. Internal errors are logged and masked.
func fail(c echo.Context, err error) error {
	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		logger.FromContext(c).Error("request failed", zap.Error(err), zap.String("path", c.Path()))
	}
	return c.JSON(statusOf(kind), ErrorResponse{Error: errs.Message(err), Code: string(kind)})
}

// bind decodes and validates the body into req. When it returns false the
// error response has already been written and err is what the handler returns.
func bind(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}
