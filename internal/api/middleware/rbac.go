package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/api/metrics"
	"github.com/bluecarbon/registry/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity(c)
			if id == nil {
				return domain.ErrMissingToken
			}
			if _, ok := allowed[id.Role]; !ok {
				metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
