package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "invopay/internal/errors"
	"invopay/internal/model"
	"invopay/internal/repository"
)

// ItemInput is one requested invoice line.
type ItemInput struct {
	Name        string
	Description string
	Amount      decimal.Decimal
	Quantity    decimal.Decimal
}

// CreateInvoiceInput carries everything needed to create an invoice. An
// empty item list is fine; the invoice starts at zero. When InvoiceNumber
// is nil the next per-client number for the current year is generated.
type CreateInvoiceInput struct {
	ClientID      uint
	CompanyID     uint
	InvoiceNumber *string
	Description   string
	Currency      string
	BillingReason *model.BillingReason
	DueDate       *time.Time
	InvoiceDate   *time.Time
	Balance       *decimal.Decimal
	Discount      *decimal.Decimal
	Tax           *decimal.Decimal
	Items         []ItemInput
}

// InvoiceChanges is a partial update. Ownership is never part of it.
type InvoiceChanges struct {
	ClientID      *uint
	CompanyID     *uint
	InvoiceNumber *string
	Description   *string
	Currency      *string
	Status        *model.InvoiceStatus
	BillingReason *model.BillingReason
	DueDate       *time.Time
	InvoiceDate   *time.Time
	LastSendDate  *time.Time
	Balance       *decimal.Decimal
	Discount      *decimal.Decimal
	Tax           *decimal.Decimal
}

func (c *InvoiceChanges) columns() map[string]interface{} {
	changes := map[string]interface{}{}
	if c.ClientID != nil {
		changes["client_id"] = *c.ClientID
	}
	if c.CompanyID != nil {
		changes["company_id"] = *c.CompanyID
	}
	setIfPresent(changes, "invoice_number", c.InvoiceNumber)
	setIfPresent(changes, "description", c.Description)
	setIfPresent(changes, "currency", c.Currency)
	if c.Status != nil {
		changes["status"] = *c.Status
	}
	if c.BillingReason != nil {
		changes["billing_reason"] = *c.BillingReason
	}
	if c.DueDate != nil {
		changes["due_date"] = *c.DueDate
	}
	if c.InvoiceDate != nil {
		changes["invoice_date"] = *c.InvoiceDate
	}
	if c.LastSendDate != nil {
		changes["last_send_date"] = *c.LastSendDate
	}
	if c.Balance != nil {
		changes["balance"] = *c.Balance
	}
	if c.Discount != nil {
		changes["discount"] = *c.Discount
	}
	if c.Tax != nil {
		changes["tax"] = *c.Tax
	}
	return changes
}

// InvoiceService owns invoice creation, numbering and amount upkeep.
type InvoiceService interface {
	// Create validates items, totals them in exact decimal arithmetic,
	// assigns the invoice number, and persists invoice plus items in one
	// transaction. A number collision surfaces as
	// apperrors.ErrDuplicateInvoiceNumber; callers may retry.
	Create(ctx context.Context, ownerID uint, in CreateInvoiceInput) (*model.Invoice, []model.InvoiceItem, error)
	Get(ctx context.Context, id, ownerID uint) (*model.Invoice, error)
	List(ctx context.Context, ownerID uint, page, perPage int) ([]model.Invoice, int64, error)
	Update(ctx context.Context, id, ownerID uint, changes InvoiceChanges) (*model.Invoice, error)
	Delete(ctx context.Context, id, ownerID uint) error

	// AddItem and RemoveItem mutate the line items and re-establish
	// Invoice.Amount in the same transaction.
	AddItem(ctx context.Context, invoiceID, ownerID uint, item ItemInput) (*model.Invoice, error)
	RemoveItem(ctx context.Context, invoiceID, itemID, ownerID uint) (*model.Invoice, error)
	// RecalculateAmount re-sums the current items and persists the result.
	RecalculateAmount(ctx context.Context, invoiceID, ownerID uint) (decimal.Decimal, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	companyRepo repository.CompanyRepository
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
	}
}

// ItemsTotal sums amount x quantity across items in decimal arithmetic.
func ItemsTotal(items []model.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Total())
	}
	return total
}

// NextInvoiceNumber formats the sequence value for a calendar year as
// "{year}/{seq:03}", starting at "{year}/001".
func NextInvoiceNumber(year int, existing int64) string {
	return fmt.Sprintf("%d/%03d", year, existing+1)
}

func validateItems(items []ItemInput) error {
	for i := range items {
		if items[i].Name == "" {
			return fmt.Errorf("%w: item name is required", apperrors.ErrValidation)
		}
		if items[i].Amount.IsNegative() || items[i].Quantity.IsNegative() {
			return fmt.Errorf("%w: item amount and quantity must be non-negative", apperrors.ErrValidation)
		}
	}
	return nil
}

func (s *invoiceService) Create(ctx context.Context, ownerID uint, in CreateInvoiceInput) (*model.Invoice, []model.InvoiceItem, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, nil, err
	}

	// The referenced client and company must belong to the caller. A
	// foreign id owned by someone else reads as missing.
	if _, err := s.clientRepo.FindOwned(ctx, in.ClientID, ownerID); err != nil {
		return nil, nil, ownedLookupErr("client", err)
	}
	if _, err := s.companyRepo.FindOwned(ctx, in.CompanyID, ownerID); err != nil {
		return nil, nil, ownedLookupErr("company", err)
	}

	items := make([]model.InvoiceItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = model.InvoiceItem{
			Name:        item.Name,
			Description: item.Description,
			Amount:      item.Amount,
			Quantity:    item.Quantity,
		}
	}

	invoice := &model.Invoice{
		UserID:        ownerID,
		ClientID:      in.ClientID,
		CompanyID:     in.CompanyID,
		Description:   in.Description,
		Currency:      in.Currency,
		Status:        model.StatusDraft,
		BillingReason: model.BillingManual,
		DueDate:       in.DueDate,
		InvoiceDate:   in.InvoiceDate,
		Amount:        ItemsTotal(items),
		Balance:       decimal.Zero,
		Discount:      decimal.Zero,
		Tax:           decimal.Zero,
	}
	if in.BillingReason != nil {
		invoice.BillingReason = *in.BillingReason
	}
	if in.Balance != nil {
		invoice.Balance = *in.Balance
	}
	if in.Discount != nil {
		invoice.Discount = *in.Discount
	}
	if in.Tax != nil {
		invoice.Tax = *in.Tax
	}

	err := s.invoiceRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.InvoiceRepository) error {
		if in.InvoiceNumber != nil {
			invoice.InvoiceNumber = *in.InvoiceNumber
		} else {
			// Count-then-format: two concurrent creations for the same
			// client can compute the same value. The unique index turns
			// the loser into a conflict rather than a silent duplicate.
			count, err := txRepo.CountForClientYear(ctx, ownerID, in.ClientID, time.Now().Year())
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = NextInvoiceNumber(time.Now().Year(), count)
		}
		return txRepo.CreateWithItems(ctx, invoice, items)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, apperrors.ErrDuplicateInvoiceNumber
		}
		return nil, nil, fmt.Errorf("create invoice: %w", err)
	}

	return invoice, items, nil
}

func (s *invoiceService) Get(ctx context.Context, id, ownerID uint) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) List(ctx context.Context, ownerID uint, page, perPage int) ([]model.Invoice, int64, error) {
	invoices, totalPages, err := s.invoiceRepo.List(ctx, ownerID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, totalPages, nil
}

func (s *invoiceService) Update(ctx context.Context, id, ownerID uint, changes InvoiceChanges) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.UpdateOwned(ctx, id, ownerID, changes.columns())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateInvoiceNumber
		}
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) Delete(ctx context.Context, id, ownerID uint) error {
	deleted, err := s.invoiceRepo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if deleted == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *invoiceService) AddItem(ctx context.Context, invoiceID, ownerID uint, item ItemInput) (*model.Invoice, error) {
	if err := validateItems([]ItemInput{item}); err != nil {
		return nil, err
	}

	var result *model.Invoice
	err := s.invoiceRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.InvoiceRepository) error {
		invoice, err := txRepo.FindOwned(ctx, invoiceID, ownerID)
		if err != nil {
			return err
		}
		newItem := &model.InvoiceItem{
			InvoiceID:   invoice.ID,
			Name:        item.Name,
			Description: item.Description,
			Amount:      item.Amount,
			Quantity:    item.Quantity,
		}
		if err := txRepo.CreateItem(ctx, newItem); err != nil {
			return err
		}
		return s.resyncAmount(ctx, txRepo, invoice, &result)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("add invoice item: %w", err)
	}
	return result, nil
}

func (s *invoiceService) RemoveItem(ctx context.Context, invoiceID, itemID, ownerID uint) (*model.Invoice, error) {
	var result *model.Invoice
	err := s.invoiceRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.InvoiceRepository) error {
		invoice, err := txRepo.FindOwned(ctx, invoiceID, ownerID)
		if err != nil {
			return err
		}
		deleted, err := txRepo.DeleteItem(ctx, invoice.ID, itemID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return gorm.ErrRecordNotFound
		}
		return s.resyncAmount(ctx, txRepo, invoice, &result)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("remove invoice item: %w", err)
	}
	return result, nil
}

func (s *invoiceService) RecalculateAmount(ctx context.Context, invoiceID, ownerID uint) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := s.invoiceRepo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.InvoiceRepository) error {
		invoice, err := txRepo.FindOwned(ctx, invoiceID, ownerID)
		if err != nil {
			return err
		}
		items, err := txRepo.Items(ctx, invoice.ID)
		if err != nil {
			return err
		}
		amount = ItemsTotal(items)
		return txRepo.UpdateAmount(ctx, invoice.ID, amount)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, apperrors.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("recalculate amount: %w", err)
	}
	return amount, nil
}

// resyncAmount re-sums the invoice's items and persists the new amount,
// leaving *out holding the refreshed aggregate.
func (s *invoiceService) resyncAmount(ctx context.Context, txRepo repository.InvoiceRepository, invoice *model.Invoice, out **model.Invoice) error {
	items, err := txRepo.Items(ctx, invoice.ID)
	if err != nil {
		return err
	}
	amount := ItemsTotal(items)
	if err := txRepo.UpdateAmount(ctx, invoice.ID, amount); err != nil {
		return err
	}
	invoice.Amount = amount
	invoice.Items = items
	*out = invoice
	return nil
}

func ownedLookupErr(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return fmt.Errorf("find %s: %w", what, err)
}
