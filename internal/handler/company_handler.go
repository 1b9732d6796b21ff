package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/service"
)

// CompanyHandler serves owner-scoped company CRUD.
type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// CreateCompanyRequest represents a new company. Address fields are
// optional and default to empty strings.
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required"`
	Address1 string `json:"address_1"`
	Address2 string `json:"address_2"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
}

// UpdateCompanyRequest is a partial company update.
type UpdateCompanyRequest struct {
	Name     *string `json:"name,omitempty"`
	Address1 *string `json:"address_1,omitempty"`
	Address2 *string `json:"address_2,omitempty"`
	City     *string `json:"city,omitempty"`
	State    *string `json:"state,omitempty"`
	ZipCode  *string `json:"zip_code,omitempty"`
	Country  *string `json:"country,omitempty"`
}

// Create godoc
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Param request body CreateCompanyRequest true "Company data"
// @Success 201 {object} model.Company
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) Create(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	company, err := h.companyService.Create(c.Request().Context(), userID, &model.Company{
		Name:     req.Name,
		Address1: req.Address1,
		Address2: req.Address2,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		Country:  req.Country,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, company)
}

// List godoc
// @Summary List the caller's companies
// @Tags companies
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Param q query string false "Name prefix filter"
// @Success 200 {object} PageResponse
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) List(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	page, perPage, search := pageArgs(c)
	companies, totalPages, err := h.companyService.List(c.Request().Context(), userID, page, perPage, search)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, PageResponse{TotalPages: totalPages, Results: companies})
}

// Get godoc
// @Summary Get one company
// @Tags companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} model.Company
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	company, err := h.companyService.Get(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// Update godoc
// @Summary Update a company
// @Tags companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param request body UpdateCompanyRequest true "Company changes"
// @Success 200 {object} model.Company
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id} [patch]
func (h *CompanyHandler) Update(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}

	company, err := h.companyService.Update(c.Request().Context(), id, userID, service.CompanyChanges{
		Name:     req.Name,
		Address1: req.Address1,
		Address2: req.Address2,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		Country:  req.Country,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// Delete godoc
// @Summary Delete a company
// @Tags companies
// @Param id path int true "Company ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.companyService.Delete(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
