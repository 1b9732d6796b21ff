package handler

import (
	"github.com/labstack/echo/v4"

	"invopay/internal/auth"
	apperrors "invopay/internal/errors"
)

// CurrentUserID extracts the authenticated user id placed in the context
// by the JWT middleware. Every owned-resource handler resolves the caller
// through this before touching storage.
func CurrentUserID(c echo.Context) (uint, error) {
	claims, ok := c.Get("user").(*auth.Claims)
	if !ok || claims.UserID == 0 {
		return 0, apperrors.ErrInvalidToken
	}
	return claims.UserID, nil
}

// respondError turns a domain error into its JSON error response.
// Internal detail is logged server-side and never returned to the client.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.Code == "INTERNAL_ERROR" {
		c.Logger().Error(err)
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}
