package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bluecarbon/registry/internal/api/metrics"
	"github.com/bluecarbon/registry/internal/core/ports"
)

// CommunityHandler handles HTTP requests for community profiles.
type CommunityHandler struct {
	service ports.CommunityService
}

func NewCommunityHandler(service ports.CommunityService) *CommunityHandler {
	return &CommunityHandler{service: service}
}

// MyProfile handles GET /api/community/my-profile. A 404 tells the client
// to send the user through profile setup.
//
// @Summary      Get own community profile
// @Tags         community
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=profileData}
// @Failure      401  {object}  envelope
// @Failure      403  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /api/community/my-profile [get]
func (h *CommunityHandler) MyProfile(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.service.MyProfile(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: profileData{Profile: profile}})
}

// Create handles POST /api/community/profile.
//
// @Summary      Create own community profile
// @Tags         community
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      communityProfileRequest  true  "Profile details"
// @Success      201   {object}  envelope{data=profileData}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      403   {object}  envelope
// @Router       /api/community/profile [post]
func (h *CommunityHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req communityProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.service.CreateProfile(c.Request().Context(), id.UserID, toCommunityProfileInput(req))
	if err != nil {
		return err
	}

	metrics.CommunityProfilesCreatedTotal.WithLabelValues(profile.Type).Inc()
	return c.JSON(http.StatusCreated, envelope{
		Success: true,
		Message: "Community profile created successfully",
		Data:    profileData{Profile: profile},
	})
}

// Update handles PUT /api/community/profile.
//
// @Summary      Update own community profile
// @Tags         community
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      communityProfileRequest  true  "Profile details"
// @Success      200   {object}  envelope{data=profileData}
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/community/profile [put]
func (h *CommunityHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req communityProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.service.UpdateProfile(c.Request().Context(), id.UserID, toCommunityProfileInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: "Community profile updated successfully",
		Data:    profileData{Profile: profile},
	})
}
