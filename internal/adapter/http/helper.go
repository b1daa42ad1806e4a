package http

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	mw "medquote-backend/internal/adapter/middleware"
)

func identity(c echo.Context) string { return mw.Identity(c) }

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.QueryParam(name)))
	return b
}

// queryInt returns def for missing or unparsable values.
func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil {
		return def
	}
	return n
}
