package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// ClientInfo records the caller's address and user agent on the request
// context so services can attach them to audit events.
func ClientInfo() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			info := domain.ClientInfo{IP: c.RealIP(), UserAgent: req.UserAgent()}
			c.SetRequest(req.WithContext(domain.WithClientInfo(req.Context(), info)))
			return next(c)
		}
	}
}
