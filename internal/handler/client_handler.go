package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/service"
)

// ClientHandler serves owner-scoped client CRUD.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new client handler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// PageResponse is one page of results plus the total page count.
type PageResponse struct {
	TotalPages int64       `json:"total_pages"`
	Results    interface{} `json:"results"`
}

// pageArgs reads ?page, ?per_page and ?q. Missing or malformed values
// fall back to defaults; the repository clamps per_page.
func pageArgs(c echo.Context) (page, perPage int, search string) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	perPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	return page, perPage, c.QueryParam("q")
}

// CreateClientRequest represents a new client.
type CreateClientRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	CompanyName string `json:"company_name"`
	Address1    string `json:"address_1"`
	Address2    string `json:"address_2"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Country     string `json:"country"`
	Website     string `json:"website"`
	Notes       string `json:"notes"`
}

// UpdateClientRequest is a partial client update.
type UpdateClientRequest struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	CompanyName *string `json:"company_name,omitempty"`
	Address1    *string `json:"address_1,omitempty"`
	Address2    *string `json:"address_2,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	ZipCode     *string `json:"zip_code,omitempty"`
	Country     *string `json:"country,omitempty"`
	Website     *string `json:"website,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Create godoc
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Param request body CreateClientRequest true "Client data"
// @Success 201 {object} model.Client
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.clientService.Create(c.Request().Context(), userID, &model.Client{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Address1:    req.Address1,
		Address2:    req.Address2,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		Website:     req.Website,
		Notes:       req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// List godoc
// @Summary List the caller's clients
// @Tags clients
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Param q query string false "Name prefix filter"
// @Success 200 {object} PageResponse
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	page, perPage, search := pageArgs(c)
	clients, totalPages, err := h.clientService.List(c.Request().Context(), userID, page, perPage, search)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, PageResponse{TotalPages: totalPages, Results: clients})
}

// Get godoc
// @Summary Get one client
// @Tags clients
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} model.Client
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	client, err := h.clientService.Get(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// Update godoc
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Param id path int true "Client ID"
// @Param request body UpdateClientRequest true "Client changes"
// @Success 200 {object} model.Client
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id} [patch]
func (h *ClientHandler) Update(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.clientService.Update(c.Request().Context(), id, userID, service.ClientChanges{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Address1:    req.Address1,
		Address2:    req.Address2,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		Website:     req.Website,
		Notes:       req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// Delete godoc
// @Summary Delete a client
// @Tags clients
// @Param id path int true "Client ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.clientService.Delete(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperrors.ErrValidation
	}
	return uint(id), nil
}
