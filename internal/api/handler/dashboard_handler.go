package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/core/domain"
)

// Dashboard handles GET /api/dashboard and describes the caller's landing view.
//
// @Summary      Dashboard descriptor for the caller's role
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=dashboardData}
// @Failure      401  {object}  envelope
// @Router       /api/dashboard [get]
func Dashboard(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: dashboardData{Dashboard: domain.DashboardFor(id.Role)}})
}
