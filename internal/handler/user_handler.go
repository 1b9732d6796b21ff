package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "invopay/internal/errors"
	"invopay/internal/service"
)

// UserHandler serves the current user's profile.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	ProfileName  *string `json:"profile_name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.userService.Me(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile changes"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, req.ProfileName, req.ProfileImage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
