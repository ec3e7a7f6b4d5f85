package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/api/metrics"
	"github.com/bluecarbon/registry/internal/core/domain"
	"github.com/bluecarbon/registry/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  envelope{data=authData}
// @Failure      400   {object}  envelope
// @Failure      429   {object}  envelope
// @Failure      500   {object}  envelope
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), toRegisterInput(req))
	observeAuth("register", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, envelope{
		Success: true,
		Message: "User registered successfully",
		Data:    authData{User: res.User, Token: res.Token},
	})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=authData}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      429   {object}  envelope
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	observeAuth("login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data:    authData{User: res.User, Token: res.Token},
	})
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=userData}
// @Failure      401  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: userData{User: user}})
}

// UpdateProfile edits the caller's name, phone and organization.
//
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=userData}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), id.UserID, toProfileUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Profile updated successfully",
		Data:    userData{User: user},
	})
}

// Logout records the logout. Tokens are not revoked server-side; the client
// discards its session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Failure      401  {object}  envelope
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	h.authService.Logout(c.Request().Context(), id)
	return c.JSON(http.StatusOK, envelope{Success: true, Message: "Logged out successfully"})
}

func observeAuth(action string, err error) {
	result := "success"
	if err != nil {
		result = domain.KindOf(err).String()
	}
	metrics.AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}
