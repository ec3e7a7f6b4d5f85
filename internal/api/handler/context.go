package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/api/middleware"
	"github.com/bluecarbon/registry/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Auth middleware. A route
// mounted without Auth fails fast with a 401 instead of reaching the service.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id := middleware.Identity(c)
	if id == nil || id.UserID == "" {
		return nil, domain.ErrMissingToken
	}
	return id, nil
}

// bindAndValidate decodes the request into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation("Invalid request body")
	}
	return c.Validate(req)
}
