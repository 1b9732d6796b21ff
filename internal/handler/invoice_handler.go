package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/service"
)

// InvoiceHandler serves the invoice aggregate.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceItemRequest is one requested line item.
type InvoiceItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateInvoiceRequest represents a new invoice with its items.
type CreateInvoiceRequest struct {
	ClientID      uint                 `json:"client_id" validate:"required"`
	CompanyID     uint                 `json:"company_id" validate:"required"`
	InvoiceNumber *string              `json:"invoice_number,omitempty"`
	Description   string               `json:"description"`
	Currency      string               `json:"currency" validate:"required"`
	BillingReason *model.BillingReason `json:"billing_reason,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	InvoiceDate   *time.Time           `json:"invoice_date,omitempty"`
	Balance       *decimal.Decimal     `json:"balance,omitempty"`
	Discount      *decimal.Decimal     `json:"discount,omitempty"`
	Tax           *decimal.Decimal     `json:"tax,omitempty"`
	Items         []InvoiceItemRequest `json:"items"`
}

// UpdateInvoiceRequest is a partial invoice update. Ownership cannot be
// changed through this path.
type UpdateInvoiceRequest struct {
	ClientID      *uint                `json:"client_id,omitempty"`
	CompanyID     *uint                `json:"company_id,omitempty"`
	InvoiceNumber *string              `json:"invoice_number,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Currency      *string              `json:"currency,omitempty"`
	Status        *model.InvoiceStatus `json:"status,omitempty"`
	BillingReason *model.BillingReason `json:"billing_reason,omitempty"`
	DueDate       *time.Time           `json:"due_date,omitempty"`
	InvoiceDate   *time.Time           `json:"invoice_date,omitempty"`
	LastSendDate  *time.Time           `json:"last_send_date,omitempty"`
	Balance       *decimal.Decimal     `json:"balance,omitempty"`
	Discount      *decimal.Decimal     `json:"discount,omitempty"`
	Tax           *decimal.Decimal     `json:"tax,omitempty"`
}

// InvoiceResponse is the created aggregate.
type InvoiceResponse struct {
	Invoice *model.Invoice      `json:"invoice"`
	Items   []model.InvoiceItem `json:"items"`
}

// Create godoc
// @Summary Create an invoice with line items
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} InvoiceResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items := make([]service.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.ItemInput{
			Name:        item.Name,
			Description: item.Description,
			Amount:      item.Amount,
			Quantity:    item.Quantity,
		}
	}

	invoice, createdItems, err := h.invoiceService.Create(c.Request().Context(), userID, service.CreateInvoiceInput{
		ClientID:      req.ClientID,
		CompanyID:     req.CompanyID,
		InvoiceNumber: req.InvoiceNumber,
		Description:   req.Description,
		Currency:      req.Currency,
		BillingReason: req.BillingReason,
		DueDate:       req.DueDate,
		InvoiceDate:   req.InvoiceDate,
		Balance:       req.Balance,
		Discount:      req.Discount,
		Tax:           req.Tax,
		Items:         items,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, InvoiceResponse{Invoice: invoice, Items: createdItems})
}

// List godoc
// @Summary List the caller's invoices
// @Tags invoices
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size (max 100)"
// @Success 200 {object} PageResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	page, perPage, _ := pageArgs(c)
	invoices, totalPages, err := h.invoiceService.List(c.Request().Context(), userID, page, perPage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, PageResponse{TotalPages: totalPages, Results: invoices})
}

// Get godoc
// @Summary Get one invoice with its items
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	invoice, err := h.invoiceService.Get(c.Request().Context(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// Update godoc
// @Summary Update an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body UpdateInvoiceRequest true "Invoice changes"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [patch]
func (h *InvoiceHandler) Update(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}

	invoice, err := h.invoiceService.Update(c.Request().Context(), id, userID, service.InvoiceChanges{
		ClientID:      req.ClientID,
		CompanyID:     req.CompanyID,
		InvoiceNumber: req.InvoiceNumber,
		Description:   req.Description,
		Currency:      req.Currency,
		Status:        req.Status,
		BillingReason: req.BillingReason,
		DueDate:       req.DueDate,
		InvoiceDate:   req.InvoiceDate,
		LastSendDate:  req.LastSendDate,
		Balance:       req.Balance,
		Discount:      req.Discount,
		Tax:           req.Tax,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// Delete godoc
// @Summary Delete an invoice and its items
// @Tags invoices
// @Param id path int true "Invoice ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.invoiceService.Delete(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddItem godoc
// @Summary Add a line item and recompute the invoice amount
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body InvoiceItemRequest true "Item data"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req InvoiceItemRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperrors.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	invoice, err := h.invoiceService.AddItem(c.Request().Context(), id, userID, service.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// RemoveItem godoc
// @Summary Remove a line item and recompute the invoice amount
// @Tags invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Param item_id path int true "Item ID"
// @Success 200 {object} model.Invoice
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/items/{item_id} [delete]
func (h *InvoiceHandler) RemoveItem(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return respondError(c, err)
	}

	invoice, err := h.invoiceService.RemoveItem(c.Request().Context(), id, itemID, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}
