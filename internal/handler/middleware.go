package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/locvowork/spreadsheets/internal/logger"
)

// RequestIDContext copies the request id set by middleware.RequestID into the
// request context so service logs carry it.
func RequestIDContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		if id == "" {
			id = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		if id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		}
		return next(c)
	}
}
