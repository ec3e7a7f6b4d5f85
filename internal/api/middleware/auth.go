package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/api/metrics"
	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

const identityKey = "identity"

// Auth validates the bearer token and injects the decoded identity into both
// the echo context and the request context. Missing, malformed, forged or
// expired tokens all end in a 401.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AccessDeniedTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrMissingToken
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AccessDeniedTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrMissingToken
			}

			id, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.AccessDeniedTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			c.Set(identityKey, id)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithIdentity(req.Context(), id)))

			return next(c)
		}
	}
}

// Identity returns the identity set by Auth, or nil on unauthenticated routes.
func Identity(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}
