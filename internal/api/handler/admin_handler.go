package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/core/ports"
)

// AdminHandler exposes user administration to admins.
type AdminHandler struct {
	service ports.UserAdminService
}

func NewAdminHandler(service ports.UserAdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "Filter by role"
// @Param        active  query     bool    false  "Filter by active flag"
// @Param        search  query     string  false  "Match email or name"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  envelope{data=usersData}
// @Failure      400     {object}  envelope
// @Failure      403     {object}  envelope
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var req listUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.ListUsers(c.Request().Context(), toListUsersInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: toUsersData(res)})
}

// SetRole handles PATCH /api/admin/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "User ID"
// @Param        body  body      setRoleRequest  true  "New role"
// @Success      200   {object}  envelope{data=userData}
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/admin/users/{id}/role [patch]
func (h *AdminHandler) SetRole(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req setRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetRole(c.Request().Context(), actor.UserID, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Message: "User role updated", Data: userData{User: user}})
}

// SetStatus handles PATCH /api/admin/users/:id/status.
//
// @Summary      Activate or deactivate a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User ID"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  envelope{data=userData}
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/admin/users/{id}/status [patch]
func (h *AdminHandler) SetStatus(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req setStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.SetActive(c.Request().Context(), actor.UserID, c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Message: "User status updated", Data: userData{User: user}})
}
