package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"invopay/internal/model"
)

// InvoiceRepository defines persistence operations for invoices and their
// line items. All single-row operations are owner-filtered; multi-step
// mutations run inside WithTransaction so invoice and items never drift.
type InvoiceRepository interface {
	// CreateWithItems inserts the invoice and then its items in one
	// transaction, backfilling each item's invoice id from the generated
	// primary key. Any failure rolls back the whole aggregate.
	CreateWithItems(ctx context.Context, invoice *model.Invoice, items []model.InvoiceItem) error
	FindOwned(ctx context.Context, id, ownerID uint) (*model.Invoice, error)
	List(ctx context.Context, ownerID uint, page, perPage int) ([]model.Invoice, int64, error)
	// CountForClientYear counts the owner's invoices for one client created
	// in the given calendar year. Used to derive the next sequence number.
	CountForClientYear(ctx context.Context, ownerID, clientID uint, year int) (int64, error)
	UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Invoice, error)
	// DeleteOwned removes the invoice and its items when owned, returning
	// the number of invoice rows removed.
	DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error)

	Items(ctx context.Context, invoiceID uint) ([]model.InvoiceItem, error)
	CreateItem(ctx context.Context, item *model.InvoiceItem) error
	DeleteItem(ctx context.Context, invoiceID, itemID uint) (int64, error)
	UpdateAmount(ctx context.Context, invoiceID uint, amount decimal.Decimal) error

	// WithTransaction runs fn against a repository bound to one
	// transaction. Returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo InvoiceRepository) error) error
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository builds a GORM-backed repository.
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo InvoiceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &invoiceRepository{db: tx})
	})
}

func (r *invoiceRepository) CreateWithItems(ctx context.Context, invoice *model.Invoice, items []model.InvoiceItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for idx := range items {
			items[idx].InvoiceID = invoice.ID
		}
		return tx.Create(&items).Error
	})
}

func (r *invoiceRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, ownerID uint, page, perPage int) ([]model.Invoice, int64, error) {
	page, perPage = NormalizePageArgs(page, perPage)

	query := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("user_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []model.Invoice
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, TotalPages(total, perPage), nil
}

func (r *invoiceRepository) CountForClientYear(ctx context.Context, ownerID, clientID uint, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("user_id = ? AND client_id = ? AND YEAR(created_at) = ?", ownerID, clientID, year).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) UpdateOwned(ctx context.Context, id, ownerID uint, changes map[string]interface{}) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&invoice).Error; err != nil {
			return err
		}
		if len(changes) == 0 {
			return tx.Preload("Items").Where("id = ?", id).First(&invoice).Error
		}
		if err := tx.Model(&model.Invoice{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Updates(changes).Error; err != nil {
			return err
		}
		return tx.Preload("Items").Where("id = ? AND user_id = ?", id, ownerID).First(&invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&model.Invoice{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		if deleted == 0 {
			return nil
		}
		return tx.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error
	})
	return deleted, err
}

func (r *invoiceRepository) Items(ctx context.Context, invoiceID uint) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	if err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *invoiceRepository) CreateItem(ctx context.Context, item *model.InvoiceItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *invoiceRepository) DeleteItem(ctx context.Context, invoiceID, itemID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND invoice_id = ?", itemID, invoiceID).
		Delete(&model.InvoiceItem{})
	return res.RowsAffected, res.Error
}

func (r *invoiceRepository) UpdateAmount(ctx context.Context, invoiceID uint, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ?", invoiceID).
		Update("amount", amount).Error
}
