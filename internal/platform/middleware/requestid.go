package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header the correlation ID travels in.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation ID. An ID supplied by the
// caller is kept; otherwise a fresh one is generated. The ID is stored on the
// echo context for the logger and recovery middleware and echoed back in the
// response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
