package middleware

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/bluecarbon/registry/internal/api/metrics"
	"github.com/bluecarbon/registry/internal/core/domain"
)

// RateLimit limits requests per client IP using store. scope labels the
// rejection metric.
func RateLimit(scope string, store echomiddleware.RateLimiterStore) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return domain.Internal("Server error", err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				return domain.Internal("Server error", err)
			}
			metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
			return domain.ErrTooManyRequests
		},
	})
}
